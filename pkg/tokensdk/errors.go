package tokensdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes sent by the service.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeAccountNotFound      = "account_not_found"
	ErrorCodeAlreadyRegistered    = "already_registered"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeUnauthorized         = "unauthorized"
	ErrorCodeRemoteProviderFailed = "remote_provider_error"
	ErrorCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrorCodeServerError          = "server_error"
)

// APIError is a failed API call.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code so callers can use errors.Is with the
// predefined values below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidRequest    = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest}
	ErrAccountNotFound   = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeAccountNotFound}
	ErrAlreadyRegistered = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeAlreadyRegistered}
	ErrInvalidToken      = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidToken}
	ErrUnauthorized      = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeUnauthorized}
	ErrRemoteProvider    = &APIError{StatusCode: http.StatusBadGateway, Code: ErrorCodeRemoteProviderFailed}
	ErrRateLimited       = &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeRateLimitExceeded}
	ErrServerError       = &APIError{StatusCode: http.StatusInternalServerError, Code: ErrorCodeServerError}
)

// parseErrorResponse builds an APIError from a non-success response.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        er.Error,
		Description: er.ErrorDescription,
	}
}
