package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"gorm.io/gorm"
)

const billColumns = `id, unit_id, billing_month, arrears_bf, previous_reading, current_reading,
	units_consumed, rate, total_amount, version, recorded_by, created_at, updated_at`

type repo struct{}

func Provide() billdomain.Repository {
	return &repo{}
}

func (r *repo) ListByUnitsAndPeriod(ctx context.Context, db *gorm.DB, unitIDs []snowflake.ID, period billdomain.Period) ([]*billdomain.UtilityBill, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var bills []*billdomain.UtilityBill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+`
		 FROM utility_bills
		 WHERE unit_id IN ? AND billing_month = ?
		 ORDER BY created_at ASC, id ASC`,
		unitIDs,
		period.Date(),
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) LatestBefore(ctx context.Context, db *gorm.DB, unitID snowflake.ID, period billdomain.Period) (*billdomain.UtilityBill, error) {
	var bill billdomain.UtilityBill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+`
		 FROM utility_bills
		 WHERE unit_id = ? AND billing_month < ?
		 ORDER BY billing_month DESC
		 LIMIT 1`,
		unitID,
		period.Date(),
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bill *billdomain.UtilityBill) error {
	if bill.Version == 0 {
		bill.Version = 1
	}
	err := db.WithContext(ctx).Exec(
		`INSERT INTO utility_bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.UnitID,
		bill.BillingMonth,
		bill.ArrearsBF,
		bill.PreviousReading,
		bill.CurrentReading,
		bill.UnitsConsumed,
		bill.Rate,
		bill.TotalAmount,
		bill.Version,
		bill.RecordedBy,
		bill.CreatedAt,
		bill.UpdatedAt,
	).Error
	if isUniqueViolation(err) {
		return &billdomain.ConflictError{Reason: billdomain.ConflictDuplicate, Err: err}
	}
	return err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, bill *billdomain.UtilityBill) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE utility_bills
		 SET arrears_bf = ?, previous_reading = ?, current_reading = ?, units_consumed = ?,
		     rate = ?, total_amount = ?, recorded_by = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		bill.ArrearsBF,
		bill.PreviousReading,
		bill.CurrentReading,
		bill.UnitsConsumed,
		bill.Rate,
		bill.TotalAmount,
		bill.RecordedBy,
		bill.UpdatedAt,
		bill.ID,
		bill.Version,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &billdomain.ConflictError{Reason: billdomain.ConflictStale}
	}
	bill.Version++
	return nil
}

// isUniqueViolation recognizes duplicate keys from gorm's error translation,
// raw postgres errors and sqlite constraint messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
