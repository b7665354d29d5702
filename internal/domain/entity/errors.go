package entity

import "errors"

// Ошибки конвейера saliency. Стадии оборачивают их через fmt.Errorf("...: %w"),
// вызывающий код проверяет через errors.Is.
var (
	// ErrModelInference несовпадение формы тензора или сбой модели при прямом проходе
	ErrModelInference = errors.New("model inference failed")

	// ErrAttributionUnavailable градиент не определён (граф разорван дискретной операцией)
	ErrAttributionUnavailable = errors.New("attribution unavailable")

	// ErrInvalidImageDimensions радиус маски получился неположительным
	ErrInvalidImageDimensions = errors.New("invalid image dimensions")

	// ErrPersistence не удалось записать артефакт в выходной каталог
	ErrPersistence = errors.New("persistence failed")

	// ErrUnknownModel классификатор с таким именем не загружен
	ErrUnknownModel = errors.New("unknown model")

	// ErrInvalidUpload присланный файл не декодируется как JPEG или PNG
	ErrInvalidUpload = errors.New("invalid upload")
)
