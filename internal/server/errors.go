package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/jkestates/estatedesk/internal/analytics/domain"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	"github.com/jkestates/estatedesk/internal/statement"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
)

// hintReload tells the client to reopen the period, which now has stored bills.
const hintReload = "reload_in_edit_mode"

type errorBody struct {
	Code        string                   `json:"code"`
	Message     string                   `json:"message"`
	Field       string                   `json:"field,omitempty"`
	UnitID      string                   `json:"unit_id,omitempty"`
	UnitNumbers []string                 `json:"unit_numbers,omitempty"`
	Hint        string                   `json:"hint,omitempty"`
	Succeeded   []billdomain.LineOutcome `json:"succeeded,omitempty"`
	Failed      []failedLine             `json:"failed,omitempty"`
}

type failedLine struct {
	UnitID     string `json:"unit_id"`
	UnitNumber string `json:"unit_number"`
	Conflict   bool   `json:"conflict"`
	Message    string `json:"message"`
}

var badRequestErrors = []error{
	ErrInvalidRequest,
	billdomain.ErrInvalidPeriod,
	billdomain.ErrInvalidRate,
	billdomain.ErrNegativeValue,
	billdomain.ErrTooPrecise,
	billdomain.ErrSessionNotReady,
	billdomain.ErrUnitNotInSession,
	billdomain.ErrPreviousReadingLock,
	billdomain.ErrNotEditMode,
	billdomain.ErrNothingToBill,
	analyticsdomain.ErrUnknownReport,
	analyticsdomain.ErrInvalidRange,
	statement.ErrUnsupportedFormat,
	statement.ErrUnsupportedKind,
}

var notFoundErrors = []error{
	billdomain.ErrSessionNotFound,
	propertydomain.ErrPropertyNotFound,
	propertydomain.ErrTenantNotFound,
	paymentdomain.ErrPaymentNotFound,
	paymentdomain.ErrTenantNotFound,
	invoicedomain.ErrInvoiceNotFound,
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		err = ErrInternal
	}
	_ = c.Error(err)
	status, body := classify(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func classify(err error) (int, errorBody) {
	var validation *billdomain.ValidationError
	if errors.As(err, &validation) {
		body := errorBody{Code: string(validation.Code), Message: validation.Message, Field: validation.Field}
		if validation.UnitID != 0 {
			body.UnitID = validation.UnitID.String()
		}
		if validation.UnitNumber != "" {
			body.UnitNumbers = []string{validation.UnitNumber}
		}
		return http.StatusUnprocessableEntity, body
	}

	var partial *billdomain.PartialPersistError
	if errors.As(err, &partial) {
		body := errorBody{
			Code:        "partial_save",
			Message:     partial.Error(),
			UnitNumbers: partial.FailedUnits(),
			Succeeded:   partial.Succeeded,
		}
		for _, f := range partial.Failed {
			body.Failed = append(body.Failed, failedLine{
				UnitID:     f.UnitID.String(),
				UnitNumber: f.UnitNumber,
				Conflict:   f.Conflict(),
				Message:    errMessage(f.Err),
			})
			if f.Conflict() {
				body.Hint = hintReload
			}
		}
		return http.StatusMultiStatus, body
	}

	var conflict *billdomain.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorBody{
			Code:        billdomain.ErrConflict.Error(),
			Message:     conflict.Error(),
			UnitNumbers: conflict.UnitNumbers,
			Hint:        hintReload,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Code: ErrUnauthorized.Error(), Message: "missing or invalid staff token"}
	case errors.Is(err, billdomain.ErrSaveInProgress), errors.Is(err, billdomain.ErrLoadSuperseded):
		return http.StatusConflict, codeOnly(err)
	case errors.Is(err, billdomain.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorBody{Code: billdomain.ErrTransient.Error(), Message: err.Error()}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, codeOnly(target)
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, errorBody{Code: target.Error(), Message: err.Error()}
		}
	}
	return http.StatusInternalServerError, codeOnly(ErrInternal)
}

func codeOnly(err error) errorBody {
	return errorBody{Code: err.Error(), Message: err.Error()}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
