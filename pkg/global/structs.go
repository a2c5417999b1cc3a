package global

// Every endpoint answers with this envelope: {status: "ok", data} on
// success, {status: "error", error, errors?} on failure. Clients branch on
// status alone.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type APIResponse struct {
	Status string            `json:"status"`
	Data   interface{}       `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Status: StatusOK,
		Data:   data,
	}
}

func ErrorResponse(message string, errors []ValidationError) APIResponse {
	return APIResponse{
		Status: StatusError,
		Error:  message,
		Errors: errors,
	}
}
