package dto

import "net/http"

// API error codes returned in the error envelope. Domain layers raise
// their own short codes (NOT_DRAFT, EMAIL_TAKEN); NormalizeErrorCode
// folds those into this ERR_* vocabulary before the response is
// written, so clients only ever see the codes below.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountInactive    = "ERR_ACCOUNT_INACTIVE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidInput       = "ERR_INVALID_INPUT"
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
	ErrCodeInvalidPaymentDate = "ERR_INVALID_PAYMENT_DATE"
	ErrCodeClientHasInvoices  = "ERR_CLIENT_HAS_INVOICES"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// httpStatusByCode is the single place an API code picks its status.
// Lifecycle violations land on 422 so clients can tell a rejected
// transition from a malformed request.
var httpStatusByCode = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusForbidden,
	ErrCodeAccountInactive:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentDate: http.StatusUnprocessableEntity,
	ErrCodeClientHasInvoices:  http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus resolves the status for an API error code. Codes that
// reach here unmapped fall back to 500 rather than leaking a guess.
func GetHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeToAPI folds the short codes raised by domain and
// application layers into the public ERR_* vocabulary.
var domainCodeToAPI = map[string]string{
	// invoice lifecycle
	"INVALID_STATE_TRANSITION": ErrCodeInvalidState,
	"DUPLICATE_NUMBER":         ErrCodeConflict,
	"INVALID_PAYMENT_DATE":     ErrCodeInvalidPaymentDate,
	"EMPTY_INVOICE":            ErrCodeBusinessRule,
	"NOT_DRAFT":                ErrCodeBusinessRule,
	"NOT_PAST_DUE":             ErrCodeBusinessRule,
	"ALREADY_ARCHIVED":         ErrCodeBusinessRule,
	"NOT_ARCHIVED":             ErrCodeBusinessRule,
	"RENDERING_DISABLED":       ErrCodeInternal,
	"RENDER_FAILED":            ErrCodeInternal,

	// invoice and item input
	"INVALID_STATUS":         ErrCodeInvalidInput,
	"INVALID_CURRENCY":       ErrCodeInvalidInput,
	"INVALID_ITEM":           ErrCodeInvalidInput,
	"INVALID_AMOUNT":         ErrCodeInvalidInput,
	"INVALID_DUE_DATE":       ErrCodeInvalidInput,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidInput,

	// clients
	"INVALID_CLIENT":             ErrCodeInvalidInput,
	"INVALID_CLIENT_NAME":        ErrCodeInvalidInput,
	"INVALID_CLIENT_EMAIL":       ErrCodeInvalidInput,
	"CLIENT_HAS_ACTIVE_INVOICES": ErrCodeClientHasInvoices,
	"ALREADY_DEACTIVATED":        ErrCodeBusinessRule,

	// owner accounts and tokens
	"INVALID_NAME":        ErrCodeInvalidInput,
	"INVALID_EMAIL":       ErrCodeInvalidInput,
	"INVALID_PASSWORD":    ErrCodeInvalidInput,
	"EMAIL_TAKEN":         ErrCodeAlreadyExists,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_LOCKED":      ErrCodeAccountLocked,
	"ACCOUNT_DEACTIVATED": ErrCodeAccountInactive,
	"ACCOUNT_INACTIVE":    ErrCodeAccountInactive,
	"OWNER_NOT_FOUND":     ErrCodeNotFound,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"TOKEN_ERROR":         ErrCodeInternal,

	// generic
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode translates a domain error code. Unknown codes
// pass through so GetHTTPStatus can still apply its 500 fallback.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeToAPI[code]; ok {
		return apiCode
	}
	return code
}
