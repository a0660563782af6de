package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	donationdomain "github.com/smallbiznis/charity/internal/donation/domain"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")

	ErrPayloadTooLarge = errors.New("payload_too_large")
)

// ErrorHandlingMiddleware renders the last handler error as
// {"error":{"type","message","errors"}} unless a body was already written.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		lastErr := c.Errors.Last()
		if lastErr == nil || c.Writer.Written() {
			return
		}
		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}

type statusRule struct {
	match   func(error) bool
	status  int
	kind    string
	message string
}

func is(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// First match wins. Validation and gateway errors are handled before the
// table because their payload depends on the error value.
var statusRules = []statusRule{
	{is(ErrUnauthorized, gatewaydomain.ErrInvalidSignature), http.StatusUnauthorized, "unauthorized", "unauthorized"},
	{is(ErrForbidden), http.StatusForbidden, "forbidden", "forbidden"},
	{is(donationdomain.ErrIntentInProgress), http.StatusConflict, "conflict", "a donation for this pledge is already being created"},
	{isNotFoundError, http.StatusNotFound, "not_found", "not found"},
	{is(ErrRateLimited), http.StatusTooManyRequests, "rate_limited", "too many requests"},
	{is(ErrPayloadTooLarge), http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds 1 MiB"},
	{is(gatewaydomain.ErrNotConfigured), http.StatusServiceUnavailable, "service_unavailable", "service unavailable"},
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: "validation error", Errors: vErr.Errors}
	}
	if err != nil && isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{{
				Field:   validationErrorField(code),
				Code:    code,
				Message: validationErrorMessage(code),
			}},
		}
	}

	var gwErr *gatewaydomain.GatewayError
	if errors.As(err, &gwErr) {
		return http.StatusInternalServerError, errorPayload{Type: "gateway_error", Message: gwErr.Error()}
	}

	for _, rule := range statusRules {
		if err != nil && rule.match(err) {
			return rule.status, errorPayload{Type: rule.kind, Message: rule.message}
		}
	}
	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
}

// classifyErrorForLog returns the response type and a bounded code for
// request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	code := payload.Type
	switch {
	case asValidationErrors(err) != nil:
		if errs := asValidationErrors(err).Errors; len(errs) > 0 {
			code = errs[0].Code
		}
	case isValidationError(err):
		code = err.Error()
	case isNotFoundError(err), errors.Is(err, gatewaydomain.ErrNotConfigured), errors.Is(err, gatewaydomain.ErrInvalidSignature):
		code = err.Error()
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, gatewaydomain.ErrInvalidProvider),
		errors.Is(err, gatewaydomain.ErrInvalidPayload):
		return true
	case isCampaignValidationError(err),
		isDonationValidationError(err):
		return true
	default:
		return false
	}
}

func isCampaignValidationError(err error) bool {
	switch {
	case errors.Is(err, campaigndomain.ErrInvalidID),
		errors.Is(err, campaigndomain.ErrInvalidTitle),
		errors.Is(err, campaigndomain.ErrInvalidTargetAmount),
		errors.Is(err, campaigndomain.ErrInvalidCurrency),
		errors.Is(err, campaigndomain.ErrInvalidStatus),
		errors.Is(err, campaigndomain.ErrInvalidDeadline):
		return true
	default:
		return false
	}
}

func isDonationValidationError(err error) bool {
	switch {
	case errors.Is(err, donationdomain.ErrInvalidCampaign),
		errors.Is(err, donationdomain.ErrInvalidEmail),
		errors.Is(err, donationdomain.ErrInvalidName),
		errors.Is(err, donationdomain.ErrInvalidAmount),
		errors.Is(err, donationdomain.ErrAmountBelowMinimum),
		errors.Is(err, donationdomain.ErrInvalidMessage),
		errors.Is(err, donationdomain.ErrInvalidOrderID),
		errors.Is(err, donationdomain.ErrMissingOrderID),
		errors.Is(err, donationdomain.ErrMissingStatus),
		errors.Is(err, donationdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound),
		errors.Is(err, donationdomain.ErrNotFound),
		errors.Is(err, donationdomain.ErrNotPaid),
		errors.Is(err, gatewaydomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case code == "amount_below_minimum":
		return "amount"
	case strings.HasPrefix(code, "missing_"):
		return strings.TrimPrefix(code, "missing_")
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "amount_below_minimum":
		return "amount is below the minimum donation"
	case "missing_order_id":
		return "order_id is required"
	case "missing_transaction_status":
		return "transaction_status is required"
	default:
		if strings.HasPrefix(code, "missing_") {
			return "value is required"
		}
		return "invalid value"
	}
}
