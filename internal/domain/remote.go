package domain

// Wire types of the remote prediction service. Field names follow that
// service's JSON exactly.

// RemoteStatusSuccess is the status discriminator of a successful remote reply
const RemoteStatusSuccess = "success"

// RemoteHealth is the body of GET /api/health
type RemoteHealth struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ModelsLoaded bool   `json:"models_loaded"`
}

// Ready reports whether the remote service can serve predictions
func (h RemoteHealth) Ready() bool {
	return h.Status == "healthy" && h.ModelsLoaded
}

// RemotePredictResponse is the body of POST /api/predict
type RemotePredictResponse struct {
	Status      string                `json:"status"`
	Predictions *RecommendationResult `json:"predictions,omitempty"`
	ModelInfo   map[string]any        `json:"model_info,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// RemoteCropsResponse is the body of GET /api/crops
type RemoteCropsResponse struct {
	Status string   `json:"status"`
	Crops  []string `json:"crops"`
	Error  string   `json:"error,omitempty"`
}

// RemoteModelInfoResponse is the body of GET /api/model-info
type RemoteModelInfoResponse struct {
	Status    string         `json:"status"`
	ModelInfo map[string]any `json:"model_info"`
	Error     string         `json:"error,omitempty"`
}

// ModelInfo describes the local calculator
type ModelInfo struct {
	Type       string         `json:"type"`
	Version    string         `json:"version"`
	CropCount  int            `json:"crop_count"`
	Crops      []string       `json:"crops"`
	TipCount   int            `json:"tip_count"`
	Remote     map[string]any `json:"remote,omitempty"`
	RemoteUsed bool           `json:"remote_enabled"`
}
