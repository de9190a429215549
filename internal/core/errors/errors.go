package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpValidationError      = "validation_failed"
	HttpProductNotFoundError = "product_not_found"
	HttpRecordNotFoundError  = "interaction_not_found"
	HttpPayloadTooLargeError = "payload_too_large"
	HttpUpstreamError        = "upstream_error"
)

// ErrorResponse is the error response body shared by every HTTP handler.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
