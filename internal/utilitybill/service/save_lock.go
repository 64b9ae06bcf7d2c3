package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SaveLock serializes saves of the same property and month across instances.
type SaveLock interface {
	Acquire(ctx context.Context, propertyID snowflake.ID, period billdomain.Period) (release func(), err error)
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisSaveLock struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewSaveLock returns a lock that does nothing when redis is disabled; the
// version column still rejects stale updates in that case.
func NewSaveLock(p Params) SaveLock {
	if p.Redis == nil {
		return noopSaveLock{}
	}
	ttl := p.Config.Billing.SaveLockTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisSaveLock{client: p.Redis, ttl: ttl, log: p.Log.Named("utilitybill.savelock")}
}

func SaveLockKey(propertyID snowflake.ID, period billdomain.Period) string {
	return fmt.Sprintf("billing:save:%s:%s", propertyID.String(), period.Key())
}

func (l *redisSaveLock) Acquire(ctx context.Context, propertyID snowflake.ID, period billdomain.Period) (func(), error) {
	key := SaveLockKey(propertyID, period)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, billdomain.Transient("acquire save lock", err)
	}
	if !ok {
		return nil, billdomain.ErrSaveInProgress
	}

	return func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release save lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

type noopSaveLock struct{}

func (noopSaveLock) Acquire(context.Context, snowflake.ID, billdomain.Period) (func(), error) {
	return func() {}, nil
}
