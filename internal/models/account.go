package models

import "gorm.io/gorm"

// Account links a user to an external OAuth identity. One row per
// (provider, providerAccountId) pair.
type Account struct {
	gorm.Model
	UserID            uint   `gorm:"column:user_id;not null;index"`
	Type              string `gorm:"column:type;not null"`
	Provider          string `gorm:"column:provider;not null;uniqueIndex:idx_provider_account"`
	ProviderAccountID string `gorm:"column:provider_account_id;not null;uniqueIndex:idx_provider_account"`
}

func (Account) TableName() string {
	return "accounts"
}
