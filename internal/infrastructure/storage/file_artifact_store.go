package storage

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
)

// CompositeSuffix добавляется к имени загруженного файла для наложения.
const CompositeSuffix = "_saliency"

// FileArtifactStore кладёт копии загрузок и наложения в один каталог.
// Файлы с одинаковым именем перезаписываются, блокировок нет.
type FileArtifactStore struct {
	dir string
}

// NewFileArtifactStore создаёт каталог, если его нет.
func NewFileArtifactStore(dir string) (*FileArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", entity.ErrPersistence, err)
	}
	return &FileArtifactStore{dir: dir}, nil
}

// Dir возвращает выходной каталог.
func (s *FileArtifactStore) Dir() string {
	return s.dir
}

// UploadPath путь копии загруженного файла.
func (s *FileArtifactStore) UploadPath(filename string) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// CompositePath путь наложения: то же имя с суффиксом _saliency.
func (s *FileArtifactStore) CompositePath(filename string) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	return filepath.Join(s.dir, strings.TrimSuffix(name, ext)+CompositeSuffix+ext), nil
}

// SaveUpload записывает байты загрузки без изменений.
func (s *FileArtifactStore) SaveUpload(ctx context.Context, filename string, data []byte) (string, error) {
	path, err := s.UploadPath(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write upload: %v", entity.ErrPersistence, err)
	}
	return path, nil
}

// SaveComposite кодирует наложение по расширению: PNG для .png, иначе JPEG.
func (s *FileArtifactStore) SaveComposite(ctx context.Context, filename string, img image.Image) (string, error) {
	path, err := s.CompositePath(filename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create composite: %v", entity.ErrPersistence, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("%w: encode composite: %v", entity.ErrPersistence, err)
	}
	return path, nil
}

func cleanName(filename string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("%w: invalid filename %q", entity.ErrPersistence, filename)
	}
	return name, nil
}

var _ port.ArtifactStore = (*FileArtifactStore)(nil)
