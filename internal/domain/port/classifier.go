package port

import (
	"context"

	"tumorviz/internal/domain/entity"
)

// Classifier интерфейс классификатора снимков.
// Вход: плоский тензор (1, H, W, 3) в NHWC, значения в [0, 1].
type Classifier interface {
	// Spec возвращает входной размер и метки классов
	Spec() entity.ModelSpec

	// Predict возвращает вероятности классов
	Predict(ctx context.Context, input []float32) ([]float32, error)

	// InputGradient возвращает градиент выхода classIndex по каждому элементу входа.
	// nil без ошибки означает, что выход недифференцируем по входу.
	InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error)
}
