package gateway

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the billing API. Message and Errors are
// the server-provided payload, passed through verbatim so forms can show the
// API's own validation messages.
type APIError struct {
	StatusCode int
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("billing API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("billing API returned %d", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// AsAPIError unwraps err into an *APIError, returning nil if it is not one.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
