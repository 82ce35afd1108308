// Package lock implements the distributed seat-lock registry (component A):
// a Redis-backed, TTL-bound key/value store providing conditional put,
// update and delete semantics so that concurrent acquire calls for the same
// seat resolve to exactly one winner. It keeps no local state; Redis is the
// single source of truth, the same "thin client over an external KV" shape
// the teacher uses for its token-bucket rate limiter
// (internal/middleware/ratelimit.go), generalized from a counter to a
// full lease record.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the lock lease duration used when the caller does not
// override it via configuration (spec default: 5 minutes).
const DefaultTTL = 5 * time.Minute

// Lease is the Go-side representation of a live SeatLock entry.
type Lease struct {
	SeatID    uint64
	EventID   uint64
	UserID    uint64
	LockID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Client is a concurrency-safe handle to the seat-lock registry. The zero
// value is not usable; construct with New.
type Client struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	acquireS *redis.Script
	extendS  *redis.Script
	releaseS *redis.Script
}

// New returns a Client bound to rdb. prefix namespaces lock keys (the
// LOCK_TABLE configuration value); ttl is the lease duration Acquire and
// Extend apply, and a zero or negative ttl falls back to DefaultTTL.
func New(rdb *redis.Client, prefix string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		rdb:      rdb,
		prefix:   prefix,
		ttl:      ttl,
		acquireS: redis.NewScript(acquireLua),
		extendS:  redis.NewScript(extendLua),
		releaseS: redis.NewScript(releaseLua),
	}
}

func (c *Client) key(seatID uint64) string {
	return fmt.Sprintf("%s:%d", c.prefix, seatID)
}

// acquireLua performs the conditional put from spec §4.A: write succeeds
// only if the key is absent or its recorded expires_at has already passed.
// The whole check-then-write happens inside Redis's single-threaded script
// execution, so two concurrent Acquire calls for the same seat can never
// both observe "absent" and both win.
const acquireLua = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local event_id = ARGV[2]
local user_id = ARGV[3]
local lock_id = ARGV[4]
local expires_at = tonumber(ARGV[5])
local ttl_ms = tonumber(ARGV[6])

local cur = redis.call('HGET', key, 'expires_at')
if cur and tonumber(cur) > now then
    return 0
end

redis.call('HSET', key,
    'event_id', event_id,
    'user_id', user_id,
    'lock_id', lock_id,
    'created_at', now,
    'expires_at', expires_at)
redis.call('PEXPIRE', key, ttl_ms)
return 1
`

// extendLua performs the conditional update from spec §4.A: only the
// current owner (matching user_id and lock_id) of a still-live lease may
// push its expiry forward.
const extendLua = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local user_id = ARGV[2]
local lock_id = ARGV[3]
local new_expires = tonumber(ARGV[4])
local ttl_ms = tonumber(ARGV[5])

local vals = redis.call('HMGET', key, 'user_id', 'lock_id', 'expires_at')
if not vals[1] or not vals[2] or not vals[3] then
    return 0
end
if vals[1] ~= user_id or vals[2] ~= lock_id then
    return 0
end
if tonumber(vals[3]) <= now then
    return 0
end

redis.call('HSET', key, 'expires_at', new_expires)
redis.call('PEXPIRE', key, ttl_ms)
return 1
`

// releaseLua performs the conditional delete from spec §4.A.
const releaseLua = `
local key = KEYS[1]
local user_id = ARGV[1]
local lock_id = ARGV[2]

local vals = redis.call('HMGET', key, 'user_id', 'lock_id')
if vals[1] == user_id and vals[2] == lock_id then
    redis.call('DEL', key)
    return 1
end
return 0
`

func newLockID() (string, error) {
	b := make([]byte, 16) // 128 bits, per spec's probabilistic-uniqueness requirement
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Acquire attempts to place a fresh lease on seatID on behalf of userID. It
// never retries internally: conditional-put semantics guarantee at most one
// of any concurrently racing callers receives a Lease.
func (c *Client) Acquire(ctx context.Context, seatID, eventID, userID uint64) (Lease, error) {
	lockID, err := newLockID()
	if err != nil {
		return Lease{}, fmt.Errorf("%w: generating lock id: %v", ErrTransient, err)
	}
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)

	res, err := c.acquireS.Run(ctx, c.rdb, []string{c.key(seatID)},
		now.UnixMilli(), eventID, userID, lockID, expiresAt.UnixMilli(), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return Lease{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if res == 0 {
		return Lease{}, ErrAlreadyLocked
	}
	return Lease{
		SeatID:    seatID,
		EventID:   eventID,
		UserID:    userID,
		LockID:    lockID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// Extend pushes the expiry of an existing, owned lease forward by the
// client's configured TTL. A failed extend means the caller must not assume
// the lock is still alive — it may have expired or been reassigned.
func (c *Client) Extend(ctx context.Context, seatID, userID uint64, lockID string) (time.Time, error) {
	newExpires := time.Now().UTC().Add(c.ttl)
	res, err := c.extendS.Run(ctx, c.rdb, []string{c.key(seatID)},
		time.Now().UTC().UnixMilli(), userID, lockID, newExpires.UnixMilli(), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if res == 0 {
		return time.Time{}, ErrInvalidLock
	}
	return newExpires, nil
}

// Release performs a conditional delete: it only removes the lease if
// userID/lockID still matches the current holder.
func (c *Client) Release(ctx context.Context, seatID, userID uint64, lockID string) error {
	res, err := c.releaseS.Run(ctx, c.rdb, []string{c.key(seatID)}, userID, lockID).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if res == 0 {
		return ErrNotOwned
	}
	return nil
}

// IsLocked reports whether seatID currently carries a live lease. On a
// transient registry error it fails closed (returns true): hiding an
// available seat is cheaper than risking a double-booking.
func (c *Client) IsLocked(ctx context.Context, seatID uint64) bool {
	expiresAt, err := c.rdb.HGet(ctx, c.key(seatID), "expires_at").Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		return true
	}
	var ms int64
	if _, err := fmt.Sscanf(expiresAt, "%d", &ms); err != nil {
		return true
	}
	return time.UnixMilli(ms).After(time.Now().UTC())
}

// Validate reports whether userID/lockID is the current, unexpired holder
// of seatID's lease. It is read-only: callers needing the freshest possible
// answer should call it as close as practical to the operation it gates,
// per the coordinator's pre-validate/re-validate split in spec §4.C.
func (c *Client) Validate(ctx context.Context, seatID, userID uint64, lockID string) (bool, error) {
	vals, err := c.rdb.HMGet(ctx, c.key(seatID), "user_id", "lock_id", "expires_at").Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if vals[0] == nil || vals[1] == nil || vals[2] == nil {
		return false, nil
	}
	gotUser, ok1 := vals[0].(string)
	gotLock, ok2 := vals[1].(string)
	gotExpires, ok3 := vals[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return false, nil
	}
	if gotUser != fmt.Sprint(userID) || gotLock != lockID {
		return false, nil
	}
	var ms int64
	if _, err := fmt.Sscanf(gotExpires, "%d", &ms); err != nil {
		return false, nil
	}
	return time.UnixMilli(ms).After(time.Now().UTC()), nil
}

// ReapExpired scans the registry's key space for leases whose expiry has
// already passed and best-effort deletes them. Correctness never depends on
// this running: Redis's own PEXPIRE already reclaims the key independently.
// It exists to bound how long a stale HGETALL/SCAN result set can look
// occupied between the key's logical and physical expiry.
func (c *Client) ReapExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC().UnixMilli()
	var cursor uint64
	reaped := 0
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+":*", 200).Result()
		if err != nil {
			return reaped, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		for _, k := range keys {
			expiresAt, err := c.rdb.HGet(ctx, k, "expires_at").Result()
			if err != nil {
				continue
			}
			var ms int64
			if _, err := fmt.Sscanf(expiresAt, "%d", &ms); err != nil {
				continue
			}
			if ms <= now {
				if err := c.rdb.Del(ctx, k).Err(); err == nil {
					reaped++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return reaped, nil
}
