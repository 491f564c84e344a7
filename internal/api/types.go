// Package api holds the response bodies shared by every feature's HTTP handlers.
package api

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of operations that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}

// InternalError is the only message clients see for unexpected failures.
const InternalError = "internal server error"
