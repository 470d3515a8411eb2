package errors

// Response is the JSON envelope written by the HTTP error handler.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "USER_NOT_FOUND"
	Details string `json:"details,omitempty"` // Detailed error information (optional)
}

// ToResponse converts an AppError into the response envelope.
func ToResponse(err AppError) Response {
	return Response{
		Success: false,
		Code:    err.HTTPCode(),
		Message: err.Message(),
		Error: &ErrorInfo{
			Code:    err.ErrorCode(),
			Details: err.Details(),
		},
	}
}
