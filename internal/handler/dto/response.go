package dto

// Every response of the API uses this envelope. Failures never carry data
// and never leak internal detail; the error-handler middleware is the only
// place that builds the failure variant.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}
