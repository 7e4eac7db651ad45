package models

import "time"

// ChallengePurpose binds an OTP challenge to exactly one workflow. A
// challenge created for one purpose must never validate for another.
type ChallengePurpose string

const (
	PurposeFindID  ChallengePurpose = "find_id"
	PurposeResetPW ChallengePurpose = "reset_pw"
)

// OtpChallenge is one pending OTP verification. The id doubles as the
// public challenge id handed to the client; it carries no information
// about the phone or purpose. Only the bcrypt hash of the code is stored.
type OtpChallenge struct {
	ID        string           `gorm:"column:id;primaryKey"`
	Phone     string           `gorm:"column:phone;not null"`
	Purpose   ChallengePurpose `gorm:"column:purpose;not null"`
	CodeHash  string           `gorm:"column:code_hash;not null"`
	Attempts  int              `gorm:"column:attempts;not null;default:0"`
	CreatedAt time.Time        `gorm:"column:created_at"`
	ExpiresAt time.Time        `gorm:"column:expires_at;not null"`
}

func (OtpChallenge) TableName() string {
	return "otp_challenges"
}
