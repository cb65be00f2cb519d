package models

import "time"

type HealthCheck struct {
	Status    string            `json:"status"`
	Storage   string            `json:"storage_backend"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
