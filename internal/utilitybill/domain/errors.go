package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidPeriod       = errors.New("invalid_billing_period")
	ErrInvalidRate         = errors.New("invalid_rate")
	ErrNegativeValue       = errors.New("negative_value")
	ErrTooPrecise          = errors.New("too_many_decimal_places")
	ErrConflict            = errors.New("utility_bill_conflict")
	ErrTransient           = errors.New("transient_fetch_failure")
	ErrSessionNotReady     = errors.New("session_not_ready")
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrLoadSuperseded      = errors.New("load_superseded")
	ErrUnitNotInSession    = errors.New("unit_not_in_session")
	ErrPreviousReadingLock = errors.New("previous_reading_locked")
	ErrNotEditMode         = errors.New("not_edit_mode")
	ErrSaveInProgress      = errors.New("save_in_progress")
	ErrNothingToBill       = errors.New("nothing_to_bill")
)

type ValidationCode string

const (
	ValidationPropertyRequired       ValidationCode = "property_required"
	ValidationPeriodRequired         ValidationCode = "billing_period_required"
	ValidationRateRequired           ValidationCode = "rate_required"
	ValidationCurrentReadingRequired ValidationCode = "current_reading_required"
	ValidationReadingRegression      ValidationCode = "current_reading_below_previous"
)

// ValidationError blocks a save before anything is written.
type ValidationError struct {
	Code       ValidationCode
	Field      string
	UnitID     snowflake.ID
	UnitNumber string
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ConflictReason string

const (
	ConflictDuplicate ConflictReason = "duplicate"
	ConflictStale     ConflictReason = "stale_version"
)

// ConflictError means the stored state moved under the session. The caller
// should reload the period in edit mode instead of retrying the insert.
type ConflictError struct {
	Reason      ConflictReason
	UnitNumbers []string
	Err         error
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	switch e.Reason {
	case ConflictStale:
		b.WriteString("utility bill was modified by someone else")
	default:
		b.WriteString("utility bill already exists for this billing period")
	}
	if len(e.UnitNumbers) > 0 {
		b.WriteString(" (units: ")
		b.WriteString(strings.Join(e.UnitNumbers, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Err }

// TransientFetchError wraps connectivity failures and timeouts. Retrying is safe.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Is(target error) bool { return target == ErrTransient }

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Transient wraps err unless it already carries a more specific classification.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var conflict *ConflictError
	var transient *TransientFetchError
	if errors.As(err, &conflict) || errors.As(err, &transient) {
		return err
	}
	return &TransientFetchError{Op: op, Err: err}
}

type LineOutcome struct {
	UnitID     snowflake.ID `json:"unit_id"`
	UnitNumber string       `json:"unit_number"`
	BillID     snowflake.ID `json:"bill_id,omitempty"`
	Version    int64        `json:"version,omitempty"`
	Err        error        `json:"-"`
}

func (o LineOutcome) Conflict() bool {
	return errors.Is(o.Err, ErrConflict)
}

// PersistResult lists every line exactly once, either in Succeeded or Failed.
type PersistResult struct {
	Succeeded []LineOutcome `json:"succeeded"`
	Failed    []LineOutcome `json:"failed"`
}

// PartialPersistError reports the units that still need saving.
type PartialPersistError struct {
	Succeeded []LineOutcome
	Failed    []LineOutcome
}

func (e *PartialPersistError) Error() string {
	units := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		units = append(units, f.UnitNumber)
	}
	return fmt.Sprintf("saved %d of %d utility bills; failed units: %s",
		len(e.Succeeded), len(e.Succeeded)+len(e.Failed), strings.Join(units, ", "))
}

func (e *PartialPersistError) FailedUnits() []string {
	units := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		units = append(units, f.UnitNumber)
	}
	return units
}
