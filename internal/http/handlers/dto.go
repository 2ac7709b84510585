package handlers

// ProductRequest is the payload for create and update. Updates are full
// replacements; partial payloads fail validation.
type ProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Envelope is the uniform response shape for every API outcome.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}
