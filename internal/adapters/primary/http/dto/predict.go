package dto

type PredictRequest struct {
	Comment   string `json:"comment"`
	ModelName string `json:"model_name"`
}

type PredictResponse struct {
	Sentiment string `json:"sentiment"`
}

type ListModelsResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}
