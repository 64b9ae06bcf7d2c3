package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListByUnitsAndPeriod(ctx context.Context, db *gorm.DB, unitIDs []snowflake.ID, period Period) ([]*UtilityBill, error)
	// LatestBefore returns the newest bill strictly before period, or nil.
	LatestBefore(ctx context.Context, db *gorm.DB, unitID snowflake.ID, period Period) (*UtilityBill, error)
	// Insert returns *ConflictError when the unit already has a bill for the month.
	Insert(ctx context.Context, db *gorm.DB, bill *UtilityBill) error
	// Update matches on id and version, then bumps the version. A stale
	// version returns *ConflictError.
	Update(ctx context.Context, db *gorm.DB, bill *UtilityBill) error
}
