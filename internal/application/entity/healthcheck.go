package entity

// HealthCheckResponse is the /health payload.
type HealthCheckResponse struct {
	Status  bool                    `json:"status"`
	Message string                  `json:"message"`
	Version string                  `json:"version"`
	Checks  HealthCheckResponseData `json:"checks"`
}

type HealthCheckResponseData struct {
	Database HealthCheckItem `json:"database"`
	Kafka    HealthCheckItem `json:"kafka"`
}

type HealthCheckItem struct {
	Status bool   `json:"status"`
	Type   string `json:"type"`
	Error  string `json:"error,omitempty"`
}
