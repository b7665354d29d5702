package container

import (
	app "tumorviz/internal/application"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/metrics"
)

type Container struct {
	UserService     *app.UserService
	SaliencyService *app.SaliencyService
	AnalysisService *app.AnalysisService
	Metrics         *metrics.Metrics
}

// Deps внешние зависимости сервисов. Explainer и Metrics могут быть nil.
type Deps struct {
	UserRepo     port.UserRepository
	Models       map[string]port.Classifier
	DefaultModel string
	Renderer     port.HeatmapRenderer
	Store        port.ArtifactStore
	Explainer    port.Explainer
	Metrics      *metrics.Metrics
	Options      app.SaliencyOptions
}

func New(d Deps) *Container {
	userService := app.NewUserService(d.UserRepo)
	saliencyService := app.NewSaliencyService(d.Renderer, d.Store, d.Metrics, d.Options)
	analysisService := app.NewAnalysisService(d.Models, d.DefaultModel, saliencyService, d.Explainer, d.Metrics)

	return &Container{
		UserService:     userService,
		SaliencyService: saliencyService,
		AnalysisService: analysisService,
		Metrics:         d.Metrics,
	}
}
