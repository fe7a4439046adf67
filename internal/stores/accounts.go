package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrDuplicateAccount is returned when (provider, externalID) is taken.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountsUnavailable is returned when Redis cannot be reached.
	ErrAccountsUnavailable = errors.New("account backend unavailable")
)

// AccountRecord is a (provider, externalID) credential binding to a user.
type AccountRecord struct {
	AccountID     string
	Provider      string
	ExternalID    string
	UserID        string
	SecretHash    string
	EmailVerified bool
}

// UserRecord holds the profile owned by one or more accounts.
type UserRecord struct {
	UserID string
	Email  string
}

// AccountStore persists accounts, users, and the email identity index used
// for cross-provider account linking.
type AccountStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewAccountStore creates an [AccountStore] backed by the given Redis client.
//
// Account creation runs a Lua script that writes the linked user hash under a
// key resolved inside the script (the user ID may come from the identity
// index), so it cannot be declared up front. The client must therefore
// address a single node (or a cluster with all keys under the prefix hashed
// to one slot).
func NewAccountStore(redisClient redis.UniversalClient, prefix string) *AccountStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &AccountStore{redis: redisClient, prefix: prefix}
}

func (s *AccountStore) accountKey(provider, externalID string) string {
	return s.prefix + ":act:" + provider + ":" + externalID
}

func (s *AccountStore) userPrefix() string {
	return s.prefix + ":usr:"
}

func (s *AccountStore) identityKey(email string) string {
	return s.prefix + ":uid:" + email
}

// createScript performs the unique-check-and-insert in one atomic step.
// When linking is requested and the email identity index already points at a
// user, the account is attached to that user and no new user record is
// written. Two concurrent creates for the same (provider, externalID) see
// exactly one success; the loser observes the EXISTS guard.
const createScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return {0, ""}
end

local uid = ARGV[2]
if ARGV[8] == "1" and ARGV[5] ~= "" then
  local existing = redis.call("GET", KEYS[2])
  if existing then
    uid = existing
  end
end

if uid == ARGV[2] then
  redis.call("HSET", ARGV[9] .. uid, "id", uid, "email", ARGV[5])
  if ARGV[5] ~= "" then
    redis.call("SET", KEYS[2], uid, "NX")
  end
end

redis.call("HSET", KEYS[1],
  "id", ARGV[1],
  "provider", ARGV[3],
  "external_id", ARGV[4],
  "user_id", uid,
  "secret_hash", ARGV[6],
  "email_verified", ARGV[7])

return {1, uid}
`

var createLua = redis.NewScript(createScript)

const setFieldScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`

var setFieldLua = redis.NewScript(setFieldScript)

// Create inserts the account and, unless linking resolves to an existing
// user, its user record. Returns the owning user ID, which differs from
// account.UserID when the identity index matched under link=true.
func (s *AccountStore) Create(ctx context.Context, account AccountRecord, user UserRecord, link bool) (string, error) {
	verified := "0"
	if account.EmailVerified {
		verified = "1"
	}
	linked := "0"
	if link {
		linked = "1"
	}

	res, err := createLua.Run(ctx, s.redis,
		[]string{s.accountKey(account.Provider, account.ExternalID), s.identityKey(user.Email)},
		account.AccountID, account.UserID, account.Provider, account.ExternalID,
		user.Email, account.SecretHash, verified, linked, s.userPrefix(),
	).Slice()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccountsUnavailable, err)
	}
	if len(res) != 2 {
		return "", fmt.Errorf("%w: malformed create reply", ErrAccountsUnavailable)
	}

	status, _ := res[0].(int64)
	if status == 0 {
		return "", ErrDuplicateAccount
	}

	ownerID, _ := res[1].(string)
	if ownerID == "" {
		ownerID = account.UserID
	}
	return ownerID, nil
}

// Retrieve loads the account and its owning user.
func (s *AccountStore) Retrieve(ctx context.Context, provider, externalID string) (*AccountRecord, *UserRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.accountKey(provider, externalID)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAccountsUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, nil, ErrAccountNotFound
	}

	account := &AccountRecord{
		AccountID:     fields["id"],
		Provider:      fields["provider"],
		ExternalID:    fields["external_id"],
		UserID:        fields["user_id"],
		SecretHash:    fields["secret_hash"],
		EmailVerified: fields["email_verified"] == "1",
	}

	userFields, err := s.redis.HGetAll(ctx, s.userPrefix()+account.UserID).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAccountsUnavailable, err)
	}

	user := &UserRecord{
		UserID: account.UserID,
		Email:  userFields["email"],
	}
	return account, user, nil
}

// UpdateSecretHash overwrites the stored secret hash for one account.
// Unrelated accounts of the same user keep their own hashes.
func (s *AccountStore) UpdateSecretHash(ctx context.Context, provider, externalID, secretHash string) error {
	return s.setField(ctx, provider, externalID, "secret_hash", secretHash)
}

// MarkEmailVerified flips the account's email-verification flag.
func (s *AccountStore) MarkEmailVerified(ctx context.Context, provider, externalID string) error {
	return s.setField(ctx, provider, externalID, "email_verified", "1")
}

func (s *AccountStore) setField(ctx context.Context, provider, externalID, field, value string) error {
	status, err := setFieldLua.Run(ctx, s.redis,
		[]string{s.accountKey(provider, externalID)}, field, value,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAccountsUnavailable, err)
	}
	if status == 0 {
		return ErrAccountNotFound
	}
	return nil
}
