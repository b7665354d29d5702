package port

import (
	"context"
	"image"
)

// ArtifactStore интерфейс выходного каталога с результатами.
type ArtifactStore interface {
	// SaveUpload сохраняет исходные байты под именем файла
	SaveUpload(ctx context.Context, filename string, data []byte) (string, error)

	// SaveComposite сохраняет наложение по пути, производному от имени файла
	SaveComposite(ctx context.Context, filename string, img image.Image) (string, error)
}
