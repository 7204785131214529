package dtos

// APIResponse is the standard envelope for every JSON endpoint.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"responseTime,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}
