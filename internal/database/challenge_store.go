package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hanbit-dev/authportal-backend/internal/models"
)

// ChallengeStore persists OTP challenges in postgres. The attempt
// increment and delete are single-row statements; the engine relies on
// that per-row atomicity and adds no locking of its own.
type ChallengeStore struct {
	db *gorm.DB
}

func NewChallengeStore(db *gorm.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func (s *ChallengeStore) Create(ctx context.Context, challenge *models.OtpChallenge) error {
	return s.db.WithContext(ctx).Create(challenge).Error
}

func (s *ChallengeStore) Get(ctx context.Context, id string) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&challenge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &challenge, nil
}

func (s *ChallengeStore) IncrementAttempts(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.OtpChallenge{}).Error
}
