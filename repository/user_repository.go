package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"messenger-api/entity"
)

type UserRepository struct {
	Repository[entity.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail returns (nil, nil) when no user has the address.
func (repository UserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the user and everything that references it.
func (repository UserRepository) DeleteAccount(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&entity.Message{}).Select("id").
			Where("sender_id = ? OR receiver_id = ?", userID, userID)
		if err := tx.Where("message_id IN (?) OR user_id = ?", owned, userID).
			Delete(&entity.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ? OR contact_id = ?", userID, userID).
			Delete(&entity.Contact{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&entity.User{}).Error
	})
}
