package api

// GloriaRequest asks for a GET request to the POS API. Without a restaurant key
// the stored key of the gloria panel is used.
type GloriaRequest struct {
	RestaurantKey string `json:"restaurant_key"`
	Endpoint      string `json:"endpoint" example:"menu"`
}

// GloriaResponse carries the answer of the POS API. Success is false if the
// API answered with a non-2xx status.
type GloriaResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    string            `json:"data"`
}
