package gateway

import "errors"

// ErrServerUnreachable is returned when no HTTP response was received at
// all. The message is what the user sees, matching the backend's language.
var ErrServerUnreachable = errors.New("não foi possível conectar ao servidor")

// msgNotFound is the fallback when a 404 arrives without a message.
const msgNotFound = "recurso não encontrado"

// APIError is an error response from the backend. Its Error() text is the
// backend-provided message, suitable for displaying to the user verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
