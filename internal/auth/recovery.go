package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/hanbit-dev/authportal-backend/internal/models"
	"github.com/hanbit-dev/authportal-backend/pkg/utils"
)

// Directory is the user directory the recovery and reset flows consult.
// Lookup methods return (nil, nil) on no match.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByNamePhone(ctx context.Context, name, phone string) (*models.User, error)
	ListByNamePhone(ctx context.Context, name, phone string) ([]models.User, error)
	FindByEmailNamePhone(ctx context.Context, email, name, phone string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID uint, hash string) error
}

// ChallengeEngine is the slice of the OTP engine these services need.
type ChallengeEngine interface {
	CreateChallenge(ctx context.Context, destination string, purpose models.ChallengePurpose) (string, string, error)
	CheckChallenge(ctx context.Context, challengeID, code string, expectedPurpose models.ChallengePurpose) (string, error)
}

// SMSSender delivers a message out of band.
type SMSSender interface {
	Send(ctx context.Context, title, message string, recipients []string) error
}

// RecoveryService finds account identifiers by name and phone, gated by
// an SMS one-time code. Successful verification discloses masked emails
// only.
type RecoveryService struct {
	directory Directory
	engine    ChallengeEngine
	sms       SMSSender
	sender    string
}

func NewRecoveryService(directory Directory, engine ChallengeEngine, sms SMSSender, sender string) *RecoveryService {
	return &RecoveryService{
		directory: directory,
		engine:    engine,
		sms:       sms,
		sender:    sender,
	}
}

// RequestRecovery validates the (name, phone) pair, issues a find_id
// challenge, and dispatches the code. A directory miss is reported as
// USER_NOT_FOUND without saying which field mismatched.
func (s *RecoveryService) RequestRecovery(ctx context.Context, name, phone string) (string, error) {
	name = trimName(name)
	phone = NormalizePhone(phone)

	fieldErrors := map[string]string{}
	if !validName(name) {
		fieldErrors["name"] = "이름은 2자 이상 입력해주세요."
	}
	if !validPhone(phone) {
		fieldErrors["phone"] = "전화번호 형식이 올바르지 않습니다."
	}
	if len(fieldErrors) > 0 {
		return "", validationError(fieldErrors)
	}

	user, err := s.directory.FindByNamePhone(ctx, name, phone)
	if err != nil {
		return "", fmt.Errorf("directory lookup failed: %w", err)
	}
	if user == nil {
		return "", userNotFound()
	}

	challengeID, code, err := s.engine.CreateChallenge(ctx, phone, models.PurposeFindID)
	if err != nil {
		return "", err
	}

	err = s.sms.Send(ctx,
		"아이디 찾기 인증번호",
		fmt.Sprintf("인증번호: %s\n5분 내에 입력해주세요.", code),
		[]string{phone},
	)
	if err != nil {
		return "", fmt.Errorf("sms dispatch failed: %w", err)
	}

	return challengeID, nil
}

// VerifyRecovery checks the submitted code and, on success, returns the
// masked email addresses registered under (name, phone-from-challenge).
// The masking is mandatory; raw addresses never leave this method.
func (s *RecoveryService) VerifyRecovery(ctx context.Context, challengeID, code, name string) ([]string, error) {
	name = trimName(name)

	fieldErrors := map[string]string{}
	if challengeID == "" {
		fieldErrors["challengeId"] = "인증 요청을 다시 시도해주세요."
	}
	if !validCode(code) {
		fieldErrors["code"] = "인증번호 6자리를 입력해주세요."
	}
	if !validName(name) {
		fieldErrors["name"] = "이름은 2자 이상 입력해주세요."
	}
	if len(fieldErrors) > 0 {
		return nil, validationError(fieldErrors)
	}

	phone, err := s.engine.CheckChallenge(ctx, challengeID, code, models.PurposeFindID)
	if err != nil {
		return nil, flowErrorFromOTP(err)
	}

	users, err := s.directory.ListByNamePhone(ctx, name, phone)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}

	masked := make([]string, 0, len(users))
	for _, user := range users {
		masked = append(masked, utils.MaskEmail(user.Email))
	}
	return masked, nil
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}
