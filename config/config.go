package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	OutputDir       string
	ONNXLibraryPath string
	XceptionMeta    string
	CNNMeta         string
	DefaultModel    string
	UseGoCV         bool

	MaskMargin          int
	ThresholdPercentile float64
	DegeneratePolicy    string

	MetricsAddr string
	HTTPAddr    string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		OutputDir:        getEnv("OUTPUT_DIR", "saliency_maps"),
		ONNXLibraryPath:  os.Getenv("ONNX_LIBRARY_PATH"),
		XceptionMeta:     getEnv("XCEPTION_MODEL_META", "models/xception.json"),
		CNNMeta:          getEnv("CNN_MODEL_META", "models/cnn.json"),
		DefaultModel:     getEnv("DEFAULT_MODEL", "xception"),
		DegeneratePolicy: getEnv("DEGENERATE_POLICY", "keep"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
	}

	var err error
	if cfg.UseGoCV, err = getBool("USE_GOCV", false); err != nil {
		return nil, err
	}
	if cfg.MaskMargin, err = getInt("MASK_MARGIN", 10); err != nil {
		return nil, err
	}
	if cfg.ThresholdPercentile, err = getFloat("THRESHOLD_PERCENTILE", 80); err != nil {
		return nil, err
	}
	if cfg.ThresholdPercentile < 0 || cfg.ThresholdPercentile > 100 {
		return nil, fmt.Errorf("THRESHOLD_PERCENTILE must be in [0, 100], got %v", cfg.ThresholdPercentile)
	}
	if cfg.MaskMargin < 0 {
		return nil, fmt.Errorf("MASK_MARGIN must not be negative, got %d", cfg.MaskMargin)
	}

	return cfg, nil
}

// ModelMetadata пути к метаданным моделей по имени.
func (c *Config) ModelMetadata() map[string]string {
	return map[string]string{
		"xception": c.XceptionMeta,
		"cnn":      c.CNNMeta,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
