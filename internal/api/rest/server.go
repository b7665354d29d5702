// Package rest отдаёт анализ снимков по HTTP.
package rest

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tumorviz/internal/container"
	"tumorviz/internal/domain/entity"
)

// MaxUploadSize ограничение на размер присланного снимка.
const MaxUploadSize = 20 << 20

const requestIDHeader = "X-Request-ID"

type Server struct {
	container *container.Container
}

func NewServer(c *container.Container) *Server {
	return &Server{container: c}
}

// Handler собирает маршруты:
//
//	GET  /healthz
//	GET  /models
//	POST /analyze?model=NAME[&format=png]  (multipart, поле image)
//	GET  /metrics
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/models", s.models)
	r.POST("/analyze", s.analyze)

	if s.container.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.container.Metrics.Handler()))
	}
	return r
}

func (s *Server) models(c *gin.Context) {
	analysis := s.container.AnalysisService
	c.JSON(http.StatusOK, gin.H{
		"models":  analysis.Models(),
		"default": analysis.DefaultModel(),
	})
}

func (s *Server) analyze(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"image\" is required"})
		return
	}
	if fh.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload := entity.Upload{Filename: uploadName(fh.Filename), Data: data}
	result, err := s.container.AnalysisService.Analyze(c.Request.Context(), c.Query("model"), upload)
	if err != nil {
		log.Printf("[%s] analyze %s: %v", c.GetString(requestIDHeader), upload.Filename, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, result.Saliency.Composite); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, newAnalyzeResponse(result))
}

// uploadName оставляет только базовое имя файла. Без имени файл
// получает случайное, чтобы не перезаписывать чужие снимки.
func uploadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return uuid.NewString() + ".png"
	}
	return name
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidUpload), errors.Is(err, entity.ErrInvalidImageDimensions):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrAttributionUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
