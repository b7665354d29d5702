package entity

import "sort"

// Labels классы опухолей в порядке выходов классификатора.
var Labels = []string{"Glioma", "Meningioma", "No Tumor", "Pituitary"}

// ModelSpec описание классификатора: входной размер и метки классов.
type ModelSpec struct {
	Name      string
	InputSize int // сторона квадратного входа (299 для Xception, 224 для CNN)
	Classes   []string
}

// ClassProbability вероятность одного класса.
type ClassProbability struct {
	Label       string
	Probability float32
}

// Prediction распределение вероятностей по классам.
type Prediction struct {
	Classes       []string
	Probabilities []float32
	ClassIndex    int
}

// NewPrediction выбирает класс с максимальной вероятностью.
func NewPrediction(classes []string, probs []float32) *Prediction {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return &Prediction{
		Classes:       classes,
		Probabilities: probs,
		ClassIndex:    best,
	}
}

// Label метка предсказанного класса.
func (p *Prediction) Label() string {
	return p.Classes[p.ClassIndex]
}

// Confidence вероятность предсказанного класса.
func (p *Prediction) Confidence() float32 {
	return p.Probabilities[p.ClassIndex]
}

// Ranked возвращает классы по убыванию вероятности.
func (p *Prediction) Ranked() []ClassProbability {
	out := make([]ClassProbability, len(p.Probabilities))
	for i, prob := range p.Probabilities {
		out[i] = ClassProbability{Label: p.Classes[i], Probability: prob}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// AnalysisResult классификация, карта значимости и текстовое пояснение.
type AnalysisResult struct {
	Model       string
	Prediction  *Prediction
	Saliency    *SaliencyResult
	Explanation string
}
