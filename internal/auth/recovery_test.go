package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-dev/authportal-backend/internal/models"
	"github.com/hanbit-dev/authportal-backend/internal/otp"
)

var codeInSMSRe = regexp.MustCompile(`\d{6}`)

func newRecoveryFixture(users ...models.User) (*RecoveryService, *fakeSMS) {
	store := newMemChallengeStore()
	engine := otp.NewEngine(store, 5*time.Minute, 5)
	sms := &fakeSMS{}
	svc := NewRecoveryService(newFakeDirectory(users...), engine, sms, "01000000000")
	return svc, sms
}

func testUser(id uint, email, name, phone string) models.User {
	u := models.User{Email: email, Name: name, Phone: phone}
	u.ID = id
	return u
}

func TestRequestRecoveryHappyPath(t *testing.T) {
	svc, sms := newRecoveryFixture(testUser(1, "hong@example.com", "홍길동", "01012345678"))

	challengeID, err := svc.RequestRecovery(context.Background(), "홍길동", "010-1234-5678")
	require.NoError(t, err, "hyphenated phone input must normalize before lookup")
	assert.NotEmpty(t, challengeID)

	require.Len(t, sms.sent, 1)
	assert.Equal(t, []string{"01012345678"}, sms.sent[0].Recipients)
	assert.Regexp(t, codeInSMSRe, sms.sent[0].Message)
}

func TestRequestRecoveryValidation(t *testing.T) {
	svc, sms := newRecoveryFixture()

	_, err := svc.RequestRecovery(context.Background(), "김", "123")
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, CodeValidationError, flowErr.Code)
	assert.Contains(t, flowErr.FieldErrors, "name")
	assert.Contains(t, flowErr.FieldErrors, "phone")
	assert.Empty(t, sms.sent, "no SMS on validation failure")
}

func TestRequestRecoveryUnknownUser(t *testing.T) {
	svc, sms := newRecoveryFixture(testUser(1, "hong@example.com", "홍길동", "01012345678"))

	_, err := svc.RequestRecovery(context.Background(), "홍길동", "01099999999")
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, CodeUserNotFound, flowErr.Code)
	assert.Empty(t, flowErr.FieldErrors, "must not reveal which field mismatched")
	assert.Empty(t, sms.sent, "no SMS for unknown users")
}

func TestVerifyRecoveryDisclosesMaskedEmails(t *testing.T) {
	svc, sms := newRecoveryFixture(
		testUser(1, "abcdef@domain.com", "홍길동", "01012345678"),
		testUser(2, "ab@domain.com", "홍길동", "01012345678"),
	)
	ctx := context.Background()

	challengeID, err := svc.RequestRecovery(ctx, "홍길동", "01012345678")
	require.NoError(t, err)
	code := codeInSMSRe.FindString(sms.sent[0].Message)

	emails, err := svc.VerifyRecovery(ctx, challengeID, code, "홍길동")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ab***@domain.com", "a*@domain.com"}, emails)
}

func TestVerifyRecoveryWrongCode(t *testing.T) {
	svc, sms := newRecoveryFixture(testUser(1, "hong@example.com", "홍길동", "01012345678"))
	ctx := context.Background()

	challengeID, err := svc.RequestRecovery(ctx, "홍길동", "01012345678")
	require.NoError(t, err)

	code := codeInSMSRe.FindString(sms.sent[0].Message)
	wrong := "000000"

	_, err = svc.VerifyRecovery(ctx, challengeID, wrong, "홍길동")
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, "INVALID", flowErr.Code)

	// The challenge is still live for the real code afterwards.
	_, err = svc.VerifyRecovery(ctx, challengeID, code, "홍길동")
	assert.NoError(t, err)
}

func TestVerifyRecoveryChallengeSingleUse(t *testing.T) {
	svc, sms := newRecoveryFixture(testUser(1, "hong@example.com", "홍길동", "01012345678"))
	ctx := context.Background()

	challengeID, err := svc.RequestRecovery(ctx, "홍길동", "01012345678")
	require.NoError(t, err)
	code := codeInSMSRe.FindString(sms.sent[0].Message)

	_, err = svc.VerifyRecovery(ctx, challengeID, code, "홍길동")
	require.NoError(t, err)

	_, err = svc.VerifyRecovery(ctx, challengeID, code, "홍길동")
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, "NOT_FOUND", flowErr.Code)
}
