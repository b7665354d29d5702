package port

import "context"

// Explainer интерфейс генератора текстового пояснения к карте значимости
type Explainer interface {
	// Explain описывает сохранённое наложение для предсказанного класса
	Explain(ctx context.Context, imagePath, label string, confidence float32) (string, error)
}
