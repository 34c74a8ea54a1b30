package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sequenceKeyPrefix = "attendance:seq:"

// stampScript returns max(ARGV[1], stored+1) and stores it. Stamps are
// microseconds so they stay exact inside Lua's double precision numbers.
var stampScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local stamp = tonumber(ARGV[1])
if stamp <= current then
  stamp = current + 1
end
redis.call('SET', KEYS[1], string.format('%d', stamp), 'PX', ARGV[2])
return stamp
`)

// SequenceRepository hands out strictly increasing write versions per
// attendance key. Redis coordinates stamps across instances; without a client,
// or when Redis fails, a process-local clock keeps versions monotonic.
type SequenceRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	now  func() time.Time
	last atomic.Int64
}

// NewSequenceRepository constructs a sequencer. client may be nil.
func NewSequenceRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SequenceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &SequenceRepository{client: client, ttl: ttl, logger: logger, now: time.Now}
}

// Next returns a version greater than any previously returned for key.
func (r *SequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	local := r.localStamp()
	if r.client == nil {
		return local, nil
	}

	stamp, err := stampScript.Run(ctx, r.client, []string{sequenceKeyPrefix + key}, local, r.ttl.Milliseconds()).Int64()
	if err != nil {
		r.logger.Warn("write sequencer unavailable, using local clock", zap.String("key", key), zap.Error(err))
		return local, nil
	}
	r.observe(stamp)
	return stamp, nil
}

func (r *SequenceRepository) localStamp() int64 {
	for {
		prev := r.last.Load()
		next := r.now().UnixMicro()
		if next <= prev {
			next = prev + 1
		}
		if r.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// observe moves the local clock past a stamp issued by Redis.
func (r *SequenceRepository) observe(stamp int64) {
	for {
		prev := r.last.Load()
		if stamp <= prev || r.last.CompareAndSwap(prev, stamp) {
			return
		}
	}
}
