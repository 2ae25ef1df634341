package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
	"github.com/munazzamapp/munazzam-server/internal/http/response"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain and store errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := toAPIError(err); apiErr != nil {
				return apiErr
			}
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
			Details: errorDetails(errs),
		}
	}
}

// toAPIError converts domain and store errors. Anything else returns nil.
func toAPIError(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := domainerrors.CodeNotFound
		if storeErr.HTTPCode() == http.StatusConflict {
			code = domainerrors.CodeAlreadyExists
		}
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    string(code),
			Message: storeErr.Message,
		}
	}
	return nil
}

// errorDetails keeps huma's own request validation messages, keyed by location.
func errorDetails(errs []error) map[string]string {
	var details map[string]string
	for i, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		if details == nil {
			details = make(map[string]string, len(errs))
		}
		key := detail.Location
		if key == "" {
			key = strconv.Itoa(i)
		}
		details[key] = detail.Message
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeAlreadyExists)
	case http.StatusUnsupportedMediaType:
		return string(domainerrors.CodeUnsupportedFormat)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// EnvelopeTransformer wraps every huma response body in the same envelope
// the raw handlers write, so clients parse one shape.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}
	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			Code:    apiErr.Code,
			Error:   apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}
	code, _ := strconv.Atoi(status)
	return response.Envelope{Success: code < 400, Data: v}, nil
}
