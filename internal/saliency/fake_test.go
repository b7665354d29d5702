package saliency

import (
	"context"
	"errors"

	"tumorviz/internal/domain/entity"
)

// fakeClassifier классификатор с заданными вероятностями и градиентом.
type fakeClassifier struct {
	size     int
	probs    []float32
	gradient func(input []float32, classIndex int) []float32
	err      error
}

func (f *fakeClassifier) Spec() entity.ModelSpec {
	return entity.ModelSpec{Name: "fake", InputSize: f.size, Classes: entity.Labels}
}

func (f *fakeClassifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.probs, nil
}

func (f *fakeClassifier) InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.gradient == nil {
		return nil, nil
	}
	return f.gradient(input, classIndex), nil
}

func constantGradient(v float32) func([]float32, int) []float32 {
	return func(input []float32, _ int) []float32 {
		out := make([]float32, len(input))
		for i := range out {
			out[i] = v
		}
		return out
	}
}

var errBackend = errors.New("backend exploded")
