package dto

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type SweepResponse struct {
	Removed int `json:"removed"`
}
