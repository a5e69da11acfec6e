package api

const Version = "1.0.0"

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"Service version"`
}
