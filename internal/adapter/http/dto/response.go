package dto

import "github.com/iho/bankrecon/internal/adapter/render"

// ListRunsResponse is an account's run history.
type ListRunsResponse struct {
	Runs  []render.RunHeader `json:"runs"`
	Total int                `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
