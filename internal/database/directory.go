package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hanbit-dev/authportal-backend/internal/models"
)

// Directory is the gorm-backed user directory. Lookup methods return
// (nil, nil) when no row matches so callers can keep "not found" and
// "store broken" on separate paths.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := d.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

func (d *Directory) FindByNamePhone(ctx context.Context, name, phone string) (*models.User, error) {
	var user models.User
	result := d.db.WithContext(ctx).Where("name = ? AND phone = ?", name, phone).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

func (d *Directory) ListByNamePhone(ctx context.Context, name, phone string) ([]models.User, error) {
	var users []models.User
	result := d.db.WithContext(ctx).Where("name = ? AND phone = ?", name, phone).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (d *Directory) FindByEmailNamePhone(ctx context.Context, email, name, phone string) (*models.User, error) {
	var user models.User
	result := d.db.WithContext(ctx).
		Where("email = ? AND name = ? AND phone = ?", email, name, phone).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

func (d *Directory) UpdatePasswordHash(ctx context.Context, userID uint, hash string) error {
	return d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}
