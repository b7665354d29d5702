package rest

import "tumorviz/internal/domain/entity"

type classProbability struct {
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
}

type hotspot struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

type analyzeResponse struct {
	Model         string             `json:"model"`
	Label         string             `json:"label"`
	Confidence    float32            `json:"confidence"`
	Probabilities []classProbability `json:"probabilities"`
	UploadPath    string             `json:"upload_path"`
	SaliencyPath  string             `json:"saliency_path"`
	Hotspot       *hotspot           `json:"hotspot,omitempty"`
	Explanation   string             `json:"explanation,omitempty"`
}

func newAnalyzeResponse(res *entity.AnalysisResult) analyzeResponse {
	p := res.Prediction
	out := analyzeResponse{
		Model:        res.Model,
		Label:        p.Label(),
		Confidence:   p.Confidence(),
		UploadPath:   res.Saliency.UploadPath,
		SaliencyPath: res.Saliency.CompositePath,
		Explanation:  res.Explanation,
	}
	for _, cp := range p.Ranked() {
		out.Probabilities = append(out.Probabilities, classProbability{Label: cp.Label, Probability: cp.Probability})
	}
	if h := res.Saliency.Hotspot; !h.Empty() {
		out.Hotspot = &hotspot{X: h.X, Y: h.Y, Width: h.Width, Height: h.Height, Area: h.Area}
	}
	return out
}
