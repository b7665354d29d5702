// Package chart рисует столбчатую диаграмму вероятностей классов.
package chart

import (
	"bytes"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tumorviz/internal/domain/entity"
)

var (
	predictedColor = drawing.ColorRed
	otherColor     = drawing.ColorBlue
)

// Probabilities возвращает PNG с вероятностями по убыванию;
// предсказанный класс выделен красным.
func Probabilities(p *entity.Prediction) ([]byte, error) {
	ranked := p.Ranked()
	bars := make([]gochart.Value, 0, len(ranked))
	for _, cp := range ranked {
		fill := otherColor
		if cp.Label == p.Label() {
			fill = predictedColor
		}
		bars = append(bars, gochart.Value{
			Value: float64(cp.Probability),
			Label: fmt.Sprintf("%s %.4f", cp.Label, cp.Probability),
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: fill,
			},
		})
	}

	graph := gochart.BarChart{
		Title:      "Probabilities for each class",
		Width:      600,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 40,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render probability chart: %w", err)
	}
	return buf.Bytes(), nil
}
