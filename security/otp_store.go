package security

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"messenger-api/config/common"
	"messenger-api/exception"
)

const otpLength = 6

var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// OtpStore keeps at most one passcode per email. Issuing a new code
// overwrites the previous one, a successful verify consumes it.
type OtpStore struct {
	client      *redis.Client
	keyPrefix   string
	ttl         time.Duration
	persist     time.Duration
	maxAttempts int
	now         func() time.Time
}

type otpRecord struct {
	Email     string    `json:"email"`
	Nonce     string    `json:"nonce"`
	CodeHash  string    `json:"codeHash"`
	ExpireAt  time.Time `json:"expireAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOtpStore(client *redis.Client, prefix string, cfg common.OtpConfig) (*OtpStore, error) {
	if client == nil {
		return nil, errors.New("otp store requires a redis client")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "messenger"
	}
	return &OtpStore{
		client:      client,
		keyPrefix:   prefix + ":otp",
		ttl:         ttl,
		persist:     ttl + time.Minute,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

func (s *OtpStore) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh code for the (normalized) email and returns it in
// clear so it can be delivered out-of-band.
func (s *OtpStore) Issue(ctx context.Context, email string) (string, time.Time, error) {
	code, err := generateNumericCode(otpLength)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate otp code: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("hash otp code: %w", err)
	}

	now := s.now().UTC()
	record := otpRecord{
		Email:     email,
		Nonce:     uuid.NewString(),
		CodeHash:  string(codeHash),
		ExpireAt:  now.Add(s.ttl),
		CreatedAt: now,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal otp record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, s.key(email), raw, s.persist).Err(); err != nil {
		return "", time.Time{}, err
	}
	return code, record.ExpireAt, nil
}

// Verify checks the code against the latest one issued for the email.
// Every call reserves an attempt before comparing, and a match consumes the
// record only if it is still the one that was read, so concurrent callers
// can neither exceed the attempt cap nor redeem the same code twice.
func (s *OtpStore) Verify(ctx context.Context, email, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return exception.ErrOtpInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	key := s.key(email)
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return exception.ErrOtpInvalid
	}
	if err != nil {
		return err
	}

	var record otpRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("unmarshal otp record: %w", err)
	}
	if record.Email != email {
		return exception.ErrOtpInvalid
	}
	if s.now().UTC().After(record.ExpireAt) {
		_, _ = s.consume(ctx, key, raw)
		return exception.ErrOtpExpired
	}

	attempts, err := fixedWindowScript.Run(ctx, s.client, []string{s.attemptsKey(email, record.Nonce)}, s.persist.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if attempts > int64(s.maxAttempts) {
		_, _ = s.consume(ctx, key, raw)
		return exception.ErrOtpInvalid
	}

	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		if attempts >= int64(s.maxAttempts) {
			_, _ = s.consume(ctx, key, raw)
		}
		return exception.ErrOtpInvalid
	}

	consumed, err := s.consume(ctx, key, raw)
	if err != nil {
		return err
	}
	if !consumed {
		return exception.ErrOtpInvalid
	}
	return nil
}

// consume deletes the record only while it still holds raw; a reissued or
// already redeemed code is left alone and reported as not consumed.
func (s *OtpStore) consume(ctx context.Context, key, raw string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, s.client, []string{key}, raw).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *OtpStore) attemptsKey(email, nonce string) string {
	return fmt.Sprintf("%s:attempts:%s:%s", s.keyPrefix, email, nonce)
}

func (s *OtpStore) key(email string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, email)
}

func generateNumericCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
