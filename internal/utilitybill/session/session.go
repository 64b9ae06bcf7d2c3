package session

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/statement"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/jkestates/estatedesk/internal/utilitybill/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateSaving        State = "saving"
	StateSaved         State = "saved"
	StateError         State = "error"
)

type Loader interface {
	LoadOrInit(ctx context.Context, propertyID snowflake.ID, period billdomain.Period, rate decimal.Decimal) (*billdomain.LoadResult, error)
	InitDrafts(ctx context.Context, propertyID snowflake.ID, period billdomain.Period, rate decimal.Decimal) (*billdomain.LoadResult, error)
}

type Saver interface {
	Persist(ctx context.Context, req service.PersistRequest) (billdomain.PersistResult, error)
}

type Renderer interface {
	Render(ctx context.Context, req statement.Request) (*statement.Document, error)
}

// Session is the working draft for one property and billing month. Every
// method is safe for concurrent use; the lock is never held across I/O.
type Session struct {
	id       string
	loader   Loader
	saver    Saver
	renderer Renderer
	log      *zap.Logger

	mu           sync.Mutex
	generation   uint64
	state        State
	mode         billdomain.Mode
	propertyID   snowflake.ID
	propertyName string
	period       billdomain.Period
	rate         decimal.Decimal
	lines        []billdomain.Line
	warnings     []billdomain.Warning
	lastErr      error
	lastResult   *billdomain.PersistResult
}

func New(id string, loader Loader, saver Saver, renderer Renderer, log *zap.Logger) *Session {
	return &Session{
		id:       id,
		loader:   loader,
		saver:    saver,
		renderer: renderer,
		log:      log.With(zap.String("session_id", id)),
		state:    StateUninitialized,
		rate:     decimal.Zero,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select sets property and month together and loads the period.
func (s *Session) Select(ctx context.Context, propertyID snowflake.ID, period billdomain.Period) error {
	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return billdomain.ErrSaveInProgress
	}
	s.propertyID = propertyID
	s.period = period
	req := s.beginLoad(false)
	s.mu.Unlock()

	return s.load(ctx, req)
}

// SelectProperty loads only when a month is already selected.
func (s *Session) SelectProperty(ctx context.Context, propertyID snowflake.ID) error {
	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return billdomain.ErrSaveInProgress
	}
	s.propertyID = propertyID
	if s.period.IsZero() {
		s.mu.Unlock()
		return nil
	}
	req := s.beginLoad(false)
	s.mu.Unlock()

	return s.load(ctx, req)
}

// SelectPeriod loads only when a property is already selected.
func (s *Session) SelectPeriod(ctx context.Context, period billdomain.Period) error {
	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return billdomain.ErrSaveInProgress
	}
	s.period = period
	if s.propertyID == 0 {
		s.mu.Unlock()
		return nil
	}
	req := s.beginLoad(false)
	s.mu.Unlock()

	return s.load(ctx, req)
}

// Reload re-reads the current selection, e.g. after a save or a conflict.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return billdomain.ErrSaveInProgress
	}
	if s.propertyID == 0 || s.period.IsZero() {
		s.mu.Unlock()
		return billdomain.ErrSessionNotReady
	}
	req := s.beginLoad(false)
	s.mu.Unlock()

	return s.load(ctx, req)
}

// SwitchToCreateMode drops the loaded bills and starts fresh drafts seeded
// from history. Only valid in edit mode.
func (s *Session) SwitchToCreateMode(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return billdomain.ErrSessionNotReady
	}
	if s.mode != billdomain.ModeEdit {
		s.mu.Unlock()
		return billdomain.ErrNotEditMode
	}
	req := s.beginLoad(true)
	s.mu.Unlock()

	return s.load(ctx, req)
}

// loadRequest is the selection snapshot taken when a load starts.
type loadRequest struct {
	generation uint64
	drafts     bool
	propertyID snowflake.ID
	period     billdomain.Period
	rate       decimal.Decimal
}

// beginLoad moves the session to loading. Callers hold s.mu and have already
// ruled out a save in flight, so Save cannot start until the load finishes.
func (s *Session) beginLoad(drafts bool) loadRequest {
	s.generation++
	s.state = StateLoading
	s.lastErr = nil
	return loadRequest{
		generation: s.generation,
		drafts:     drafts,
		propertyID: s.propertyID,
		period:     s.period,
		rate:       s.rate,
	}
}

func (s *Session) load(ctx context.Context, req loadRequest) error {
	var (
		result *billdomain.LoadResult
		err    error
	)
	if req.drafts {
		result, err = s.loader.InitDrafts(ctx, req.propertyID, req.period, req.rate)
	} else {
		result, err = s.loader.LoadOrInit(ctx, req.propertyID, req.period, req.rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.generation != s.generation {
		return billdomain.ErrLoadSuperseded
	}
	if err != nil {
		s.state = StateError
		s.lastErr = err
		s.lines = nil
		s.warnings = nil
		s.log.Warn("billing period load failed",
			zap.String("property_id", req.propertyID.String()),
			zap.String("billing_month", req.period.String()),
			zap.Error(err),
		)
		return err
	}

	s.mode = result.Mode
	s.propertyName = result.PropertyName
	if result.Mode == billdomain.ModeEdit {
		s.rate = result.Rate
	}
	s.lines = result.Lines
	s.warnings = result.Warnings
	s.lastResult = nil
	s.state = StateReady
	return nil
}

// SetRate recomputes every line with the new rate. Zero is accepted while
// the session is being configured; Save rejects it.
func (s *Session) SetRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return billdomain.ErrNegativeValue
	}
	if err := billdomain.CheckScale(rate, billdomain.RatePlaces); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return billdomain.ErrSessionNotReady
	}
	s.rate = rate
	for i := range s.lines {
		s.recompute(i)
	}
	return nil
}

// SetCurrentReading updates one line; nil clears the reading.
func (s *Session) SetCurrentReading(unitID snowflake.ID, reading *decimal.Decimal) error {
	if reading != nil {
		if reading.IsNegative() {
			return billdomain.ErrNegativeValue
		}
		if err := billdomain.CheckScale(*reading, billdomain.ReadingPlaces); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.lineIndex(unitID)
	if err != nil {
		return err
	}
	if reading == nil {
		s.lines[i].CurrentReading = nil
	} else {
		v := *reading
		s.lines[i].CurrentReading = &v
	}
	s.recompute(i)
	return nil
}

func (s *Session) SetArrears(unitID snowflake.ID, arrears decimal.Decimal) error {
	if arrears.IsNegative() {
		return billdomain.ErrNegativeValue
	}
	if err := billdomain.CheckScale(arrears, billdomain.ReadingPlaces); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.lineIndex(unitID)
	if err != nil {
		return err
	}
	s.lines[i].ArrearsBF = arrears
	return nil
}

// SetPreviousReading corrects a stored bill. Create-mode lines keep the
// reading resolved from history.
func (s *Session) SetPreviousReading(unitID snowflake.ID, reading decimal.Decimal) error {
	if reading.IsNegative() {
		return billdomain.ErrNegativeValue
	}
	if err := billdomain.CheckScale(reading, billdomain.ReadingPlaces); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.lineIndex(unitID)
	if err != nil {
		return err
	}
	if s.mode != billdomain.ModeEdit || !s.lines[i].Persisted() {
		return billdomain.ErrPreviousReadingLock
	}
	s.lines[i].PreviousReading = reading
	s.recompute(i)
	return nil
}

// lineIndex requires s.mu and a ready session.
func (s *Session) lineIndex(unitID snowflake.ID) (int, error) {
	if s.state != StateReady {
		return -1, billdomain.ErrSessionNotReady
	}
	for i := range s.lines {
		if s.lines[i].UnitID == unitID {
			return i, nil
		}
	}
	return -1, billdomain.ErrUnitNotInSession
}

// recompute requires s.mu.
func (s *Session) recompute(i int) {
	line := &s.lines[i]
	line.Recompute(s.rate)

	kept := line.Warnings[:0]
	for _, w := range line.Warnings {
		if w.Code != billdomain.WarningReadingRegression {
			kept = append(kept, w)
		}
	}
	line.Warnings = kept
	if line.Regression {
		line.Warnings = append(line.Warnings, billdomain.Warning{
			Code:       billdomain.WarningReadingRegression,
			UnitID:     line.UnitID,
			UnitNumber: line.UnitNumber,
			Message:    "current reading is below the previous reading; consumption shown as 0",
		})
	}
	if len(line.Warnings) == 0 {
		line.Warnings = nil
	}
}

// Validate checks the session the way Save does, without writing.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate()
}

func (s *Session) validate() error {
	if s.propertyID == 0 {
		return &billdomain.ValidationError{
			Code:    billdomain.ValidationPropertyRequired,
			Field:   "property_id",
			Message: "select a property",
		}
	}
	if s.period.IsZero() {
		return &billdomain.ValidationError{
			Code:    billdomain.ValidationPeriodRequired,
			Field:   "billing_period",
			Message: "select a billing period",
		}
	}
	if !s.rate.IsPositive() {
		return &billdomain.ValidationError{
			Code:    billdomain.ValidationRateRequired,
			Field:   "rate",
			Message: "set a rate greater than zero",
		}
	}
	for _, line := range s.lines {
		if line.CurrentReading == nil {
			return &billdomain.ValidationError{
				Code:       billdomain.ValidationCurrentReadingRequired,
				Field:      "current_reading",
				UnitID:     line.UnitID,
				UnitNumber: line.UnitNumber,
				Message:    "enter the current reading for unit " + line.UnitNumber,
			}
		}
		if line.CurrentReading.LessThan(line.PreviousReading) {
			return &billdomain.ValidationError{
				Code:       billdomain.ValidationReadingRegression,
				Field:      "current_reading",
				UnitID:     line.UnitID,
				UnitNumber: line.UnitNumber,
				Message: "current reading " + line.CurrentReading.String() +
					" is below the previous reading " + line.PreviousReading.String() +
					" for unit " + line.UnitNumber,
			}
		}
	}
	return nil
}

// Save validates, then writes every line. Saved lines keep their bill id
// even when others fail, so a retry only updates them.
func (s *Session) Save(ctx context.Context) (billdomain.PersistResult, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return billdomain.PersistResult{}, billdomain.ErrSessionNotReady
	}
	if err := s.validate(); err != nil {
		s.mu.Unlock()
		return billdomain.PersistResult{}, err
	}
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return billdomain.PersistResult{}, billdomain.ErrNothingToBill
	}

	req := service.PersistRequest{
		PropertyID: s.propertyID,
		Period:     s.period,
		Rate:       s.rate,
		Mode:       s.mode,
		Lines:      cloneLines(s.lines),
	}
	s.state = StateSaving
	s.lastErr = nil
	s.mu.Unlock()

	result, err := s.saver.Persist(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range result.Succeeded {
		for i := range s.lines {
			if s.lines[i].UnitID == o.UnitID {
				s.lines[i].BillID = o.BillID
				s.lines[i].Version = o.Version
			}
		}
	}
	s.lastResult = &result

	if err != nil {
		s.state = StateReady
		s.lastErr = err
		return result, err
	}
	s.mode = billdomain.ModeEdit
	s.state = StateSaved
	return result, nil
}

func cloneLines(lines []billdomain.Line) []billdomain.Line {
	out := make([]billdomain.Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// LastError is the error attached by the latest failed load or save.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
