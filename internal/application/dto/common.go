package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Available solo se llena en INSUFFICIENT_STOCK: unidades disponibles al momento del bloqueo.
	Available *int `json:"available,omitempty"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
