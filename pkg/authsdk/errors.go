package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CSRFFailedCode is the code the server sets on CSRF rejections.
const CSRFFailedCode = "csrf_failed"

// APIError is returned for any non-success response.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Detail is the server's message ("detail" or, for 500s, "error")
	Detail string

	// Code is set for CSRF rejections
	Code string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("authsdk: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("authsdk: %d: %s", e.StatusCode, e.Detail)
}

// IsCSRF reports whether the server rejected the request's CSRF token.
func (e *APIError) IsCSRF() bool {
	return e.StatusCode == http.StatusForbidden && e.Code == CSRFFailedCode
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse builds an *APIError from an error response body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		apiErr.Code = er.Code
		apiErr.Detail = er.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = er.Error
		}
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(body))
	return apiErr
}
