package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidVerificationToken covers unknown, expired, reused and foreign
// tokens alike.
var ErrInvalidVerificationToken = errors.New("invalid verification token")

const verificationKeyPrefix = "eshopperz:verify:"

// VerificationTokens keeps single-use email verification tokens in Redis.
type VerificationTokens struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewVerificationTokens(rdb redis.UniversalClient, ttl time.Duration) *VerificationTokens {
	return &VerificationTokens{rdb: rdb, ttl: ttl}
}

func (t *VerificationTokens) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()

	err := t.rdb.Set(ctx, verificationKeyPrefix+token, strconv.FormatInt(userID, 10), t.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	return token, nil
}

// Consume deletes the token and checks it was issued for userID. A token
// presented for the wrong user is burnt as well.
func (t *VerificationTokens) Consume(ctx context.Context, userID int64, token string) error {
	owner, err := t.rdb.GetDel(ctx, verificationKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("consume verification token: %w", err)
	}

	if owner != strconv.FormatInt(userID, 10) {
		return ErrInvalidVerificationToken
	}

	return nil
}
