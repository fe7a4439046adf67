package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/internal"
)

var (
	// ErrNotFound is returned when no session record exists for the ID.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when a record exists but is past one of its caps.
	ErrExpired = errors.New("session expired")
	// ErrUnavailable is returned when the Redis backend cannot be reached.
	ErrUnavailable = errors.New("session backend unavailable")
)

// Config holds session lifetime tuning parameters.
type Config struct {
	// TotalDuration is the absolute session lifetime from creation.
	TotalDuration time.Duration
	// InactiveDuration is the maximum idle time between touches.
	InactiveDuration time.Duration
}

// Store persists sessions in Redis under per-session keys plus a per-user set
// used for enumeration and invalidation sweeps.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	config Config

	now func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
//
// The invalidation sweep runs a Lua script that derives session keys from the
// per-user set at execution time, so those keys cannot be declared up front.
// The client must therefore address a single node (or a cluster with all keys
// under the prefix hashed to one slot).
func NewStore(redisClient redis.UniversalClient, prefix string, cfg Config) *Store {
	if prefix == "" {
		prefix = "ses"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		config: cfg,
		now:    time.Now,
	}
}

func (s *Store) sessionKey(id string) string {
	return s.prefix + ":" + id
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

const createScript = `
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("SADD", KEYS[2], ARGV[1])
redis.call("PEXPIRE", KEYS[2], ARGV[3])
return 1
`

var createLua = redis.NewScript(createScript)

// touchScript checks inactivity expiry and rewrites the trailing
// LastActiveAt field in place. Status codes: 0 missing, 1 expired,
// 2 corrupt, 3 touched. GET-before-SETRANGE inside the script prevents a
// racing invalidation from being resurrected as a zero-padded record.
const touchScript = `
local function read_be64(s, i)
  local v = 0
  for j = 0, 7 do
    local b = string.byte(s, i + j)
    if not b then
      return nil
    end
    v = v * 256 + b
  end
  return v
end

local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if #data < 19 then
  return 2
end

local last_active = read_be64(data, #data - 7)
if not last_active then
  return 2
end

local now = tonumber(ARGV[2])
local inactive = tonumber(ARGV[3])
if inactive > 0 and (now - last_active) > inactive then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", KEYS[2], ARGV[4])
  return 1
end

redis.call("SETRANGE", KEYS[1], #data - 8, ARGV[1])
return 3
`

var touchLua = redis.NewScript(touchScript)

const deleteScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
return existed
`

var deleteLua = redis.NewScript(deleteScript)

const invalidateScript = `
local members = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, id in ipairs(members) do
  local keep = false
  for i = 2, #ARGV do
    if ARGV[i] == id then
      keep = true
      break
    end
  end
  if not keep then
    redis.call("DEL", ARGV[1] .. id)
    redis.call("SREM", KEYS[1], id)
    removed = removed + 1
  end
end
return removed
`

var invalidateLua = redis.NewScript(invalidateScript)

// Create mints a new session for the user with CreatedAt = LastActiveAt = now.
// Record write and per-user registration happen in one script, so the session
// is never registered without its record or vice versa.
func (s *Store) Create(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, errors.New("empty user id")
	}

	id, err := internal.NewID()
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	sess := &Session{
		ID:           id.String(),
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	encoded, err := encode(sess)
	if err != nil {
		return nil, err
	}

	err = createLua.Run(ctx, s.redis,
		[]string{s.sessionKey(sess.ID), s.userKey(userID)},
		sess.ID, encoded, s.config.TotalDuration.Milliseconds(),
	).Err()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return sess, nil
}

// Get loads a session and enforces both lifetime caps lazily. Records past
// either cap are deleted on read and reported as [ErrExpired].
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sess, err := decode(sessionID, data)
	if err != nil {
		return nil, err
	}

	if !sess.ValidAt(s.now(), s.config.TotalDuration, s.config.InactiveDuration) {
		_, _ = s.Delete(ctx, sessionID, sess.UserID)
		return nil, ErrExpired
	}

	return sess, nil
}

// Touch updates LastActiveAt. A session already past the absolute cap is gone
// from Redis (TTL) and reports [ErrNotFound]; one past the inactivity cap is
// deleted and reports [ErrExpired]. Touching never extends the absolute cap
// because the key TTL is left untouched.
func (s *Store) Touch(ctx context.Context, sessionID, userID string) error {
	now := s.now().UnixMilli()

	var nowBE [8]byte
	binary.BigEndian.PutUint64(nowBE[:], uint64(now))

	status, err := touchLua.Run(ctx, s.redis,
		[]string{s.sessionKey(sessionID), s.userKey(userID)},
		nowBE[:], now, s.config.InactiveDuration.Milliseconds(), sessionID,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch status {
	case 3:
		return nil
	case 1:
		return ErrExpired
	case 2:
		return errors.New("corrupt session record")
	default:
		return ErrNotFound
	}
}

// Delete removes a single session. It is idempotent: deleting a session that
// is already gone reports existed=false with no error.
func (s *Store) Delete(ctx context.Context, sessionID, userID string) (bool, error) {
	existed, err := deleteLua.Run(ctx, s.redis,
		[]string{s.sessionKey(sessionID), s.userKey(userID)},
		sessionID,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return existed == 1, nil
}

// Invalidate removes every session belonging to the user except the given
// IDs and returns how many were removed. The sweep runs as one script, so a
// concurrent Create for the same user is serialized against it.
func (s *Store) Invalidate(ctx context.Context, userID string, except ...string) (int, error) {
	args := make([]interface{}, 0, len(except)+1)
	args = append(args, s.prefix+":")
	for _, id := range except {
		args = append(args, id)
	}

	removed, err := invalidateLua.Run(ctx, s.redis, []string{s.userKey(userID)}, args...).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(removed), nil
}

// List enumerates the user's currently valid sessions. Stale set members
// (expired or deleted records) are pruned as a side effect.
func (s *Store) List(ctx context.Context, userID string) ([]Session, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	now := s.now()
	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		data, err := s.redis.Get(ctx, s.sessionKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = s.redis.SRem(ctx, s.userKey(userID), id).Err()
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		sess, err := decode(id, data)
		if err != nil {
			continue
		}
		if !sess.ValidAt(now, s.config.TotalDuration, s.config.InactiveDuration) {
			_, _ = s.Delete(ctx, id, userID)
			continue
		}
		sessions = append(sessions, *sess)
	}

	return sessions, nil
}
