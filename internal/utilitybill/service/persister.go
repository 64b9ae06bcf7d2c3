package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/actorcontext"
	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type PersistRequest struct {
	PropertyID snowflake.ID
	Period     billdomain.Period
	Rate       decimal.Decimal
	Mode       billdomain.Mode
	Lines      []billdomain.Line
}

// Persister writes a session's lines. Lines without a stored bill are
// inserted, the rest are updated against their version.
type Persister struct {
	db          *gorm.DB
	bills       billdomain.Repository
	node        *snowflake.Node
	clock       clock.Clock
	lock        SaveLock
	log         *zap.Logger
	metrics     *observability.Metrics
	policy      config.ConsistencyPolicy
	parallelism int
	timeout     time.Duration
}

func NewPersister(p Params, lock SaveLock) *Persister {
	parallelism := p.Config.Billing.MaxParallelWrites
	if parallelism <= 0 {
		parallelism = 1
	}
	policy := p.Config.Billing.Consistency
	if policy == "" {
		policy = config.ConsistencyPerLine
	}
	return &Persister{
		db:          p.DB,
		bills:       p.Bills,
		node:        p.Node,
		clock:       p.Clock,
		lock:        lock,
		log:         p.Log.Named("utilitybill.persister"),
		metrics:     p.Metrics,
		policy:      policy,
		parallelism: parallelism,
		timeout:     p.Config.Billing.RequestTimeout,
	}
}

func (p *Persister) Policy() config.ConsistencyPolicy { return p.policy }

// Persist returns the per-line result together with an aggregate error:
// *ConflictError when every failed line conflicted and nothing was saved,
// *PartialPersistError when some lines were saved, *TransientFetchError otherwise.
func (p *Persister) Persist(ctx context.Context, req PersistRequest) (billdomain.PersistResult, error) {
	if len(req.Lines) == 0 {
		return billdomain.PersistResult{}, billdomain.ErrNothingToBill
	}
	if req.Period.IsZero() {
		return billdomain.PersistResult{}, billdomain.ErrInvalidPeriod
	}
	if !req.Rate.IsPositive() {
		return billdomain.PersistResult{}, billdomain.ErrInvalidRate
	}

	release, err := p.lock.Acquire(ctx, req.PropertyID, req.Period)
	if err != nil {
		return billdomain.PersistResult{}, err
	}
	defer release()

	started := time.Now()
	bills, err := p.buildBills(ctx, req)
	if err != nil {
		return billdomain.PersistResult{}, err
	}

	var outcomes []billdomain.LineOutcome
	if p.policy == config.ConsistencyAtomic {
		outcomes = p.writeAtomic(ctx, req, bills)
	} else {
		outcomes = p.writePerLine(ctx, bills, req.Lines)
	}

	if p.metrics != nil {
		p.metrics.PersistDuration.WithLabelValues(string(req.Mode), string(p.policy)).Observe(time.Since(started).Seconds())
	}

	result := billdomain.PersistResult{}
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failed = append(result.Failed, o)
		} else {
			result.Succeeded = append(result.Succeeded, o)
		}
	}

	aggErr := aggregate(result)
	if aggErr != nil {
		p.log.Warn("utility bill save incomplete",
			zap.String("property_id", req.PropertyID.String()),
			zap.String("billing_month", req.Period.String()),
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)),
			zap.Error(aggErr),
		)
	} else {
		p.log.Info("utility bills saved",
			zap.String("property_id", req.PropertyID.String()),
			zap.String("billing_month", req.Period.String()),
			zap.String("mode", string(req.Mode)),
			zap.Int("lines", len(result.Succeeded)),
		)
	}
	return result, aggErr
}

func (p *Persister) buildBills(ctx context.Context, req PersistRequest) ([]billdomain.UtilityBill, error) {
	now := p.clock.Now(ctx)
	actor := actorcontext.ActorID(ctx)

	bills := make([]billdomain.UtilityBill, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.CurrentReading == nil {
			return nil, &billdomain.ValidationError{
				Code:       billdomain.ValidationCurrentReadingRequired,
				Field:      "current_reading",
				UnitID:     line.UnitID,
				UnitNumber: line.UnitNumber,
				Message:    "current reading is required for unit " + line.UnitNumber,
			}
		}
		c := billdomain.Compute(line.PreviousReading, line.CurrentReading, req.Rate)
		if c.Regression {
			return nil, &billdomain.ValidationError{
				Code:       billdomain.ValidationReadingRegression,
				Field:      "current_reading",
				UnitID:     line.UnitID,
				UnitNumber: line.UnitNumber,
				Message:    "current reading is below the previous reading for unit " + line.UnitNumber,
			}
		}
		if line.ArrearsBF.IsNegative() || line.PreviousReading.IsNegative() {
			return nil, billdomain.ErrNegativeValue
		}

		bill := billdomain.UtilityBill{
			ID:              line.BillID,
			UnitID:          line.UnitID,
			BillingMonth:    req.Period.Date(),
			ArrearsBF:       line.ArrearsBF,
			PreviousReading: line.PreviousReading,
			CurrentReading:  *line.CurrentReading,
			UnitsConsumed:   c.UnitsConsumed,
			Rate:            req.Rate,
			TotalAmount:     c.TotalAmount,
			Version:         line.Version,
			RecordedBy:      actor,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if bill.ID == 0 {
			bill.ID = p.node.Generate()
			bill.Version = 1
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// writePerLine issues independent writes and waits for all of them.
func (p *Persister) writePerLine(ctx context.Context, bills []billdomain.UtilityBill, lines []billdomain.Line) []billdomain.LineOutcome {
	outcomes := make([]billdomain.LineOutcome, len(bills))

	var g errgroup.Group
	g.SetLimit(p.parallelism)
	for i := range bills {
		i := i
		bill := bills[i]
		line := lines[i]
		g.Go(func() error {
			callCtx, cancel := withTimeout(ctx, p.timeout)
			defer cancel()

			err := p.write(callCtx, p.db, &bill, line.Persisted())
			outcomes[i] = outcome(line, bill, err)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// writeAtomic runs every write in one transaction. A failure rolls back the
// whole batch, so every line is reported as failed.
func (p *Persister) writeAtomic(ctx context.Context, req PersistRequest, bills []billdomain.UtilityBill) []billdomain.LineOutcome {
	written := make([]billdomain.UtilityBill, len(bills))
	copy(written, bills)

	var failedAt = -1
	callCtx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	err := p.db.WithContext(callCtx).Transaction(func(tx *gorm.DB) error {
		for i := range written {
			if err := p.write(callCtx, tx, &written[i], req.Lines[i].Persisted()); err != nil {
				failedAt = i
				return err
			}
		}
		return nil
	})

	outcomes := make([]billdomain.LineOutcome, len(bills))
	for i, line := range req.Lines {
		switch {
		case err == nil:
			outcomes[i] = outcome(line, written[i], nil)
		case i == failedAt || failedAt < 0:
			outcomes[i] = outcome(line, bills[i], err)
		default:
			outcomes[i] = outcome(line, bills[i], errRolledBack)
		}
	}
	return outcomes
}

var errRolledBack = errors.New("rolled back with the rest of the batch")

func (p *Persister) write(ctx context.Context, db *gorm.DB, bill *billdomain.UtilityBill, persisted bool) error {
	op := "insert"
	var err error
	if persisted {
		op = "update"
		err = p.bills.Update(ctx, db, bill)
	} else {
		err = p.bills.Insert(ctx, db, bill)
	}

	if p.metrics != nil {
		result := "ok"
		switch {
		case errors.Is(err, billdomain.ErrConflict):
			result = "conflict"
		case err != nil:
			result = "error"
		}
		p.metrics.BillWrites.WithLabelValues(op, result).Inc()
	}
	return err
}

func outcome(line billdomain.Line, bill billdomain.UtilityBill, err error) billdomain.LineOutcome {
	o := billdomain.LineOutcome{UnitID: line.UnitID, UnitNumber: line.UnitNumber}
	if err != nil {
		var conflict *billdomain.ConflictError
		if errors.As(err, &conflict) {
			o.Err = &billdomain.ConflictError{Reason: conflict.Reason, UnitNumbers: []string{line.UnitNumber}, Err: conflict.Err}
		} else {
			o.Err = billdomain.Transient("save unit "+line.UnitNumber, err)
		}
		return o
	}
	o.BillID = bill.ID
	o.Version = bill.Version
	return o
}

func aggregate(result billdomain.PersistResult) error {
	if len(result.Failed) == 0 {
		return nil
	}
	if len(result.Succeeded) > 0 {
		return &billdomain.PartialPersistError{Succeeded: result.Succeeded, Failed: result.Failed}
	}

	conflict := &billdomain.ConflictError{}
	var firstOther error
	for _, f := range result.Failed {
		var c *billdomain.ConflictError
		if errors.As(f.Err, &c) {
			if conflict.Reason == "" {
				conflict.Reason = c.Reason
			}
			conflict.UnitNumbers = append(conflict.UnitNumbers, f.UnitNumber)
			continue
		}
		if firstOther == nil && !errors.Is(f.Err, errRolledBack) {
			firstOther = f.Err
		}
	}
	if firstOther == nil && len(conflict.UnitNumbers) > 0 {
		return conflict
	}
	if firstOther == nil {
		firstOther = result.Failed[0].Err
	}
	return billdomain.Transient("save utility bills", firstOther)
}
