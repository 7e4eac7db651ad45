package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hanbit-dev/authportal-backend/internal/models"
)

// Check failures, in the order the engine evaluates them. A purpose
// mismatch is reported as ErrNotFound on purpose: callers must not be able
// to probe which workflow a challenge id belongs to.
var (
	ErrNotFound     = errors.New("NOT_FOUND")
	ErrExpired      = errors.New("EXPIRED")
	ErrTooManyTries = errors.New("TOO_MANY_TRIES")
	ErrInvalid      = errors.New("INVALID")
)

// Store is the persistent challenge record store. Get returns (nil, nil)
// when no record exists for the id.
type Store interface {
	Create(ctx context.Context, challenge *models.OtpChallenge) error
	Get(ctx context.Context, id string) (*models.OtpChallenge, error)
	IncrementAttempts(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Engine generates and validates one-time codes. Codes are 6 digits
// sampled uniformly from [100000, 999999]; with MaxAttempts 5 the odds of
// brute-forcing a challenge are bounded at 5/900000 over its lifetime, so
// do not raise the attempt cap without re-deriving that bound.
type Engine struct {
	store       Store
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewEngine(store Store, ttl time.Duration, maxAttempts int) *Engine {
	return &Engine{
		store:       store,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// CreateChallenge stores a new challenge bound to destination and purpose
// and returns its id together with the plaintext code. The plaintext is
// never persisted; the caller is responsible for out-of-band delivery.
func (e *Engine) CreateChallenge(ctx context.Context, destination string, purpose models.ChallengePurpose) (string, string, error) {
	code, err := generateCode()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash code: %w", err)
	}

	challenge := &models.OtpChallenge{
		ID:        uuid.NewString(),
		Phone:     destination,
		Purpose:   purpose,
		CodeHash:  string(codeHash),
		Attempts:  0,
		CreatedAt: e.now(),
		ExpiresAt: e.now().Add(e.ttl),
	}

	if err := e.store.Create(ctx, challenge); err != nil {
		return "", "", fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge.ID, code, nil
}

// CheckChallenge validates a submitted code against the challenge. On
// success the record is deleted (one-time use) and the bound destination
// is returned. Expiry and the attempt cap are checked lazily here; dead
// records are not evicted in the background.
func (e *Engine) CheckChallenge(ctx context.Context, challengeID, code string, expectedPurpose models.ChallengePurpose) (string, error) {
	challenge, err := e.store.Get(ctx, challengeID)
	if err != nil {
		return "", fmt.Errorf("failed to load challenge: %w", err)
	}
	if challenge == nil || challenge.Purpose != expectedPurpose {
		return "", ErrNotFound
	}
	if e.now().After(challenge.ExpiresAt) {
		return "", ErrExpired
	}
	if challenge.Attempts >= e.maxAttempts {
		return "", ErrTooManyTries
	}

	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		if err := e.store.IncrementAttempts(ctx, challengeID); err != nil {
			return "", fmt.Errorf("failed to record attempt: %w", err)
		}
		return "", ErrInvalid
	}

	if err := e.store.Delete(ctx, challengeID); err != nil {
		return "", fmt.Errorf("failed to delete challenge: %w", err)
	}
	return challenge.Phone, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
