package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hanbit-dev/authportal-backend/internal/models"
)

const resetTokenKind = "pw_reset"

// TokenConsumer records reset-token ids as they are spent. Consume
// returns false when the jti was already seen, which makes a replayed
// token inside its validity window fail even though signature, expiry and
// kind all still check out.
type TokenConsumer interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// ResetService orchestrates the email+name+phone → OTP → reset token →
// password mutation flow.
type ResetService struct {
	directory Directory
	engine    ChallengeEngine
	sms       SMSSender
	consumer  TokenConsumer
	sender    string
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewResetService(directory Directory, engine ChallengeEngine, sms SMSSender, consumer TokenConsumer, sender, secret string, tokenTTL time.Duration) *ResetService {
	return &ResetService{
		directory: directory,
		engine:    engine,
		sms:       sms,
		consumer:  consumer,
		sender:    sender,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// RequestReset validates the (email, name, phone) triple, issues a
// reset_pw challenge for the matched account, and dispatches the code.
// Misses collapse to USER_NOT_FOUND with no field detail.
func (s *ResetService) RequestReset(ctx context.Context, email, name, phone string) (string, error) {
	email = NormalizeEmail(email)
	name = trimName(name)
	phone = NormalizePhone(phone)

	fieldErrors := map[string]string{}
	if !validEmail(email) {
		fieldErrors["email"] = "이메일 형식이 올바르지 않습니다."
	}
	if !validName(name) {
		fieldErrors["name"] = "이름은 2자 이상 입력해주세요."
	}
	if !validPhone(phone) {
		fieldErrors["phone"] = "전화번호 형식이 올바르지 않습니다."
	}
	if len(fieldErrors) > 0 {
		return "", validationError(fieldErrors)
	}

	user, err := s.directory.FindByEmailNamePhone(ctx, email, name, phone)
	if err != nil {
		return "", fmt.Errorf("directory lookup failed: %w", err)
	}
	if user == nil {
		return "", userNotFound()
	}

	challengeID, code, err := s.engine.CreateChallenge(ctx, phone, models.PurposeResetPW)
	if err != nil {
		return "", err
	}

	err = s.sms.Send(ctx,
		"비밀번호 재설정 인증번호",
		fmt.Sprintf("인증번호: %s\n5분 내에 입력해주세요.", code),
		[]string{phone},
	)
	if err != nil {
		return "", fmt.Errorf("sms dispatch failed: %w", err)
	}

	return challengeID, nil
}

// VerifyReset checks the code, re-validates that the account still
// matches (email, name, phone-from-challenge), and mints the short-lived
// reset token the client brings back to UpdatePassword.
func (s *ResetService) VerifyReset(ctx context.Context, challengeID, code, email, name string) (string, error) {
	email = NormalizeEmail(email)
	name = trimName(name)

	fieldErrors := map[string]string{}
	if challengeID == "" {
		fieldErrors["challengeId"] = "인증 요청을 다시 시도해주세요."
	}
	if !validCode(code) {
		fieldErrors["code"] = "인증번호 6자리를 입력해주세요."
	}
	if !validEmail(email) {
		fieldErrors["email"] = "이메일 형식이 올바르지 않습니다."
	}
	if !validName(name) {
		fieldErrors["name"] = "이름은 2자 이상 입력해주세요."
	}
	if len(fieldErrors) > 0 {
		return "", validationError(fieldErrors)
	}

	phone, err := s.engine.CheckChallenge(ctx, challengeID, code, models.PurposeResetPW)
	if err != nil {
		return "", flowErrorFromOTP(err)
	}

	user, err := s.directory.FindByEmailNamePhone(ctx, email, name, phone)
	if err != nil {
		return "", fmt.Errorf("directory lookup failed: %w", err)
	}
	if user == nil {
		return "", userNotFound()
	}

	claims := jwt.MapClaims{
		"uid":  user.ID,
		"kind": resetTokenKind,
		"jti":  uuid.NewString(),
		"exp":  s.now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// UpdatePassword consumes a reset token and rewrites the password hash
// for the embedded user id. The token's jti is spent before the mutation,
// so a second call with the same token fails with TOKEN_INVALID.
func (s *ResetService) UpdatePassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	fieldErrors := map[string]string{}
	if len(newPassword) < 8 {
		fieldErrors["newPassword"] = "비밀번호는 8자 이상이어야 합니다."
	}
	if newPassword != confirmPassword {
		fieldErrors["confirmPassword"] = "비밀번호가 일치하지 않습니다."
	}
	if len(fieldErrors) > 0 {
		return validationError(fieldErrors)
	}

	userID, jti, err := s.parseResetToken(resetToken)
	if err != nil {
		return tokenInvalid()
	}

	firstUse, err := s.consumer.Consume(ctx, jti, s.tokenTTL)
	if err != nil {
		return fmt.Errorf("token consumption check failed: %w", err)
	}
	if !firstUse {
		return tokenInvalid()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.directory.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *ResetService) parseResetToken(resetToken string) (uint, string, error) {
	if resetToken == "" {
		return 0, "", errors.New("empty token")
	}

	token, err := jwt.Parse(resetToken, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", errors.New("invalid claims")
	}
	if kind, _ := claims["kind"].(string); kind != resetTokenKind {
		return 0, "", errors.New("wrong token kind")
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, "", errors.New("missing uid")
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return 0, "", errors.New("missing jti")
	}
	return uint(uid), jti, nil
}
