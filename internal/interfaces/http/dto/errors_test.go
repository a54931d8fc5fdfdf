package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInvalidPaymentDate, http.StatusUnprocessableEntity},
		{ErrCodeClientHasInvoices, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, GetHTTPStatus(tc.code), "code %s", tc.code)
	}

	t.Run("unknown codes default to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
	})
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("maps domain codes to API codes", func(t *testing.T) {
		cases := []struct {
			domain string
			api    string
		}{
			{"NOT_FOUND", ErrCodeNotFound},
			{"INVALID_STATE_TRANSITION", ErrCodeInvalidState},
			{"INVALID_PAYMENT_DATE", ErrCodeInvalidPaymentDate},
			{"CLIENT_HAS_ACTIVE_INVOICES", ErrCodeClientHasInvoices},
			{"EMPTY_INVOICE", ErrCodeBusinessRule},
			{"DUPLICATE_NUMBER", ErrCodeConflict},
			{"EMAIL_TAKEN", ErrCodeAlreadyExists},
			{"TOKEN_EXPIRED", ErrCodeTokenExpired},
			{"ACCOUNT_LOCKED", ErrCodeAccountLocked},
		}
		for _, tc := range cases {
			assert.Equal(t, tc.api, NormalizeErrorCode(tc.domain), "domain code %s", tc.domain)
		}
	})

	t.Run("every mapped code resolves to a known HTTP status", func(t *testing.T) {
		for domain, api := range domainCodeToAPI {
			_, ok := httpStatusByCode[api]
			assert.True(t, ok, "domain code %s maps to %s which has no HTTP status", domain, api)
		}
	})

	t.Run("unknown codes pass through unchanged", func(t *testing.T) {
		assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
	})
}
