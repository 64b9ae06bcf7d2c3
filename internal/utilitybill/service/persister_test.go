package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/actorcontext"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/testutil"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type persistFixture struct {
	db        *gorm.DB
	seed      *testutil.Seeder
	params    Params
	persister *Persister
	req       PersistRequest
}

// newPersistFixture prepares a create-mode request for units A1 (0 -> 30) and A2 (50 -> 80).
func newPersistFixture(t *testing.T, policy config.ConsistencyPolicy) *persistFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	p := newParams(t, db)
	p.Config.Billing.Consistency = policy

	property := seed.Property("Greenview")
	a1 := seed.Unit(property.ID, "A1")
	a2 := seed.Unit(property.ID, "A2")

	lines := []billdomain.Line{
		{UnitID: a1.ID, UnitNumber: "A1", PreviousReading: d(0), CurrentReading: dp(30)},
		{UnitID: a2.ID, UnitNumber: "A2", PreviousReading: d(50), CurrentReading: dp(80)},
	}
	return &persistFixture{
		db:        db,
		seed:      seed,
		params:    p,
		persister: NewPersister(p, NewSaveLock(p)),
		req: PersistRequest{
			PropertyID: property.ID,
			Period:     period(t, "2025-03"),
			Rate:       d(15),
			Mode:       billdomain.ModeCreate,
			Lines:      lines,
		},
	}
}

func (f *persistFixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&billdomain.UtilityBill{}).Count(&n).Error)
	return n
}

func TestPersistCreateInsertsEveryLine(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	ctx := actorcontext.WithActor(context.Background(), actorcontext.Actor{ID: "staff-1"})

	result, err := f.persister.Persist(ctx, f.req)
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 2)
	assert.Empty(t, result.Failed)
	for _, o := range result.Succeeded {
		assert.NotZero(t, o.BillID)
		assert.Equal(t, int64(1), o.Version)
	}

	stored, err := f.params.Bills.ListByUnitsAndPeriod(ctx, f.db, []snowflake.ID{f.req.Lines[0].UnitID, f.req.Lines[1].UnitID}, f.req.Period)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, b := range stored {
		assert.Equal(t, "2025-03-01", b.Period().String())
		assert.True(t, b.UnitsConsumed.Equal(d(30)))
		assert.True(t, b.TotalAmount.Equal(d(450)))
		assert.True(t, b.Rate.Equal(d(15)))
		assert.Equal(t, "staff-1", b.RecordedBy)
	}
}

func TestPersistPartialFailureReportsFailedUnits(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	// someone else billed A1 for the month in the meantime
	f.seed.Bill(f.req.Lines[0].UnitID, "2025-03", 0, 28, 15)

	result, err := f.persister.Persist(context.Background(), f.req)
	var partial *billdomain.PartialPersistError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"A1"}, partial.FailedUnits())

	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, "A2", result.Succeeded[0].UnitNumber)
	require.Len(t, result.Failed, 1)
	assert.True(t, result.Failed[0].Conflict())
	assert.Equal(t, int64(2), f.count(t))
}

func TestPersistAllConflictsIsConflictError(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	f.seed.Bill(f.req.Lines[0].UnitID, "2025-03", 0, 28, 15)
	f.seed.Bill(f.req.Lines[1].UnitID, "2025-03", 50, 75, 15)

	result, err := f.persister.Persist(context.Background(), f.req)
	var conflict *billdomain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, billdomain.ConflictDuplicate, conflict.Reason)
	assert.ElementsMatch(t, []string{"A1", "A2"}, conflict.UnitNumbers)
	assert.Empty(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)
}

func TestPersistRetryAfterPartialUpdatesSavedLines(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	bills := &billsMock{}
	bills.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(b *billdomain.UtilityBill) bool {
		return b.UnitID == f.req.Lines[1].UnitID
	})).Return(errors.New("server closed the connection unexpectedly")).Once()
	bills.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := f.params
	p.Bills = bills
	persister := NewPersister(p, NewSaveLock(p))

	result, err := persister.Persist(context.Background(), f.req)
	var partial *billdomain.PartialPersistError
	require.ErrorAs(t, err, &partial)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, billdomain.ErrTransient)
	assert.False(t, result.Failed[0].Conflict())

	// the caller marks the saved line as persisted and retries the batch
	saved := result.Succeeded[0]
	f.req.Lines[0].BillID = saved.BillID
	f.req.Lines[0].Version = saved.Version
	bills.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(b *billdomain.UtilityBill) bool {
		return b.ID == saved.BillID && b.Version == saved.Version
	})).Return(nil).Once()

	result, err = persister.Persist(context.Background(), f.req)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	bills.AssertNumberOfCalls(t, "Update", 1)
	bills.AssertNumberOfCalls(t, "Insert", 3)
}

func TestPersistEditModeStaleVersion(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	b1 := f.seed.Bill(f.req.Lines[0].UnitID, "2025-03", 0, 30, 15)
	b2 := f.seed.Bill(f.req.Lines[1].UnitID, "2025-03", 50, 80, 15)

	f.req.Mode = billdomain.ModeEdit
	f.req.Lines[0].BillID, f.req.Lines[0].Version = b1.ID, b1.Version
	f.req.Lines[1].BillID, f.req.Lines[1].Version = b2.ID, b2.Version+5
	f.req.Lines[0].CurrentReading = dp(35)

	result, err := f.persister.Persist(context.Background(), f.req)
	var partial *billdomain.PartialPersistError
	require.ErrorAs(t, err, &partial)
	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, int64(2), result.Succeeded[0].Version)

	var conflict *billdomain.ConflictError
	require.ErrorAs(t, result.Failed[0].Err, &conflict)
	assert.Equal(t, billdomain.ConflictStale, conflict.Reason)
}

func TestPersistAtomicRollsBack(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyAtomic)
	f.seed.Bill(f.req.Lines[1].UnitID, "2025-03", 50, 75, 15)
	assert.Equal(t, config.ConsistencyAtomic, f.persister.Policy())

	result, err := f.persister.Persist(context.Background(), f.req)
	require.ErrorIs(t, err, billdomain.ErrConflict)
	assert.Empty(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)
	// only the pre-existing bill remains
	assert.Equal(t, int64(1), f.count(t))
}

func TestPersistAtomicCommits(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyAtomic)

	result, err := f.persister.Persist(context.Background(), f.req)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	assert.Equal(t, int64(2), f.count(t))
}

func TestPersistRejectsInvalidRequests(t *testing.T) {
	f := newPersistFixture(t, config.ConsistencyPerLine)
	ctx := context.Background()

	req := f.req
	req.Rate = d(0)
	_, err := f.persister.Persist(ctx, req)
	require.ErrorIs(t, err, billdomain.ErrInvalidRate)

	req = f.req
	req.Lines = nil
	_, err = f.persister.Persist(ctx, req)
	require.ErrorIs(t, err, billdomain.ErrNothingToBill)

	req = f.req
	req.Lines = []billdomain.Line{{UnitID: f.req.Lines[1].UnitID, UnitNumber: "A2", PreviousReading: d(50), CurrentReading: dp(40)}}
	_, err = f.persister.Persist(ctx, req)
	var validation *billdomain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, billdomain.ValidationReadingRegression, validation.Code)
	assert.Equal(t, "A2", validation.UnitNumber)

	assert.Equal(t, int64(0), f.count(t))
}

func TestSaveLockSerializesSaves(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newPersistFixture(t, config.ConsistencyPerLine)
	p := f.params
	p.Redis = client
	lock := NewSaveLock(p)
	persister := NewPersister(p, lock)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, f.req.PropertyID, f.req.Period)
	require.NoError(t, err)
	key := SaveLockKey(f.req.PropertyID, f.req.Period)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	_, err = persister.Persist(ctx, f.req)
	require.ErrorIs(t, err, billdomain.ErrSaveInProgress)
	assert.Equal(t, int64(0), f.count(t))

	release()
	assert.False(t, mr.Exists(key))

	_, err = persister.Persist(ctx, f.req)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
}

func TestSaveLockReleaseKeepsForeignToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := newParams(t, nil)
	p.Redis = client
	lock := NewSaveLock(p)
	pr := period(t, "2025-03")

	release, err := lock.Acquire(context.Background(), 7, pr)
	require.NoError(t, err)

	// the lock expired and another instance took it over
	key := SaveLockKey(7, pr)
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set(key, "other-instance"))

	release()
	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", value)
}
