package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	app "tumorviz/internal/application"
	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/infrastructure/storage"
	"tumorviz/internal/metrics"
	"tumorviz/internal/saliency"
)

type stubClassifier struct{}

func (stubClassifier) Spec() entity.ModelSpec {
	return entity.ModelSpec{Name: "stub", InputSize: 32, Classes: entity.Labels}
}

func (stubClassifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func (stubClassifier) InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error) {
	return nil, nil
}

func TestNew(t *testing.T) {
	store, err := storage.NewFileArtifactStore(t.TempDir())
	require.NoError(t, err)

	c := New(Deps{
		UserRepo:     storage.NewMemoryUserRepository(),
		Models:       map[string]port.Classifier{"stub": stubClassifier{}},
		DefaultModel: "stub",
		Renderer:     saliency.NewRenderer(),
		Store:        store,
		Metrics:      metrics.New(),
		Options:      app.DefaultSaliencyOptions(),
	})

	require.NotNil(t, c.UserService)
	require.NotNil(t, c.SaliencyService)
	require.NotNil(t, c.Metrics)
	require.Equal(t, []string{"stub"}, c.AnalysisService.Models())
	require.Equal(t, "stub", c.AnalysisService.DefaultModel())

	user, err := c.UserService.BeginCheck(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
}
