package errors

import "net/http"

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func Validation(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}

// ActiveSessionExists is returned when a focus cycle is started while the
// user already has an open session. Callers should resync to discover the
// existing session instead of retrying the create.
func ActiveSessionExists(details interface{}) *APIError {
	return Conflict("active_session_exists", "an active session already exists", details)
}

// AlreadyFinalized guards the double finalize/abort race. The caller that
// loses the race should treat it as a benign no-op.
func AlreadyFinalized() *APIError {
	return Conflict("already_finalized", "session is already finalized", nil)
}
