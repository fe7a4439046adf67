package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeRecordVersionV1 = 1

var (
	// ErrCodeNotFound is returned when no live code exists, the record
	// expired, or it was superseded by a newer issue.
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrCodeMismatch is returned when the provided code hash does not match.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrCodeAttemptsExceeded is returned once too many mismatches burned
	// the record.
	ErrCodeAttemptsExceeded = errors.New("verification code attempts exceeded")
	// ErrCodesUnavailable is returned when Redis cannot be reached.
	ErrCodesUnavailable = errors.New("verification backend unavailable")
)

// CodeRecord is the stored form of a single-use verification code. Only the
// SHA-256 of the raw code is persisted.
type CodeRecord struct {
	AccountID string
	UserID    string
	SessionID string
	CodeHash  [32]byte
	ExpiresAt int64 // unix milliseconds
	Attempts  uint16
}

// VerificationStore persists one live code per (account, purpose): the key is
// derived from both, so a fresh Save atomically supersedes the previous code.
type VerificationStore struct {
	redis  redis.UniversalClient
	prefix string

	now func() time.Time
}

// NewVerificationStore creates a [VerificationStore] backed by the given
// Redis client.
func NewVerificationStore(redisClient redis.UniversalClient, prefix string) *VerificationStore {
	if prefix == "" {
		prefix = "vcd"
	}
	return &VerificationStore{redis: redisClient, prefix: prefix, now: time.Now}
}

func (s *VerificationStore) key(accountID, purpose string) string {
	return s.prefix + ":" + purpose + ":" + accountID
}

// Save stores the record under the (account, purpose) key with the given TTL,
// replacing any outstanding code for that pair.
func (s *VerificationStore) Save(ctx context.Context, accountID, purpose string, record *CodeRecord, ttl time.Duration) error {
	encoded, err := encodeCodeRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(accountID, purpose), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodesUnavailable, err)
	}
	return nil
}

// Consume redeems the live code for (account, purpose). The whole
// check-then-delete runs inside a WATCH transaction, so a redeem racing a
// fresh Save can never consume the superseded record. On success the record
// is deleted (single use) and returned; mismatches burn an attempt and delete
// the record once maxAttempts is reached.
func (s *VerificationStore) Consume(ctx context.Context, accountID, purpose string, providedHash [32]byte, maxAttempts int) (*CodeRecord, error) {
	const maxRetries = 4
	key := s.key(accountID, purpose)

	for i := 0; i < maxRetries; i++ {
		var matched *CodeRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeCodeRecord(data)
			if err != nil {
				return err
			}

			now := s.now().UnixMilli()
			if now > record.ExpiresAt {
				return deleteInTx(ctx, tx, key, ErrCodeNotFound)
			}

			if subtle.ConstantTimeCompare(record.CodeHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if int(record.Attempts) >= maxAttempts {
					return deleteInTx(ctx, tx, key, ErrCodeAttemptsExceeded)
				}

				ttl := time.Until(time.UnixMilli(record.ExpiresAt))
				if ttl <= 0 {
					return deleteInTx(ctx, tx, key, ErrCodeNotFound)
				}

				updated, err := encodeCodeRecord(record)
				if err != nil {
					return err
				}
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrCodeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrCodeNotFound
			case errors.Is(err, ErrCodeNotFound),
				errors.Is(err, ErrCodeMismatch),
				errors.Is(err, ErrCodeAttemptsExceeded):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrCodesUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, ErrCodeNotFound
}

func deleteInTx(ctx context.Context, tx *redis.Tx, key string, outcome error) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return err
	}
	return outcome
}

func encodeCodeRecord(record *CodeRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(codeRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.AccountID, record.UserID, record.SessionID} {
		if len(field) > 65535 {
			return nil, errors.New("code record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeCodeRecord(data []byte) (*CodeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != codeRecordVersionV1 {
		return nil, errors.New("invalid code record version")
	}

	record := &CodeRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&record.AccountID, &record.UserID, &record.SessionID} {
		var n uint16
		if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
