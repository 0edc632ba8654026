package repository

import (
	"context"

	"gorm.io/gorm"
	"messenger-api/entity"
)

type ContactRepository struct {
	Repository[entity.Contact]
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (repository ContactRepository) IsContact(ctx context.Context, db *gorm.DB, ownerID, contactID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&entity.Contact{}).
		Where("owner_id = ? AND contact_id = ?", ownerID, contactID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMutual writes both directions of the relation; a direction that
// already exists is left untouched.
func (repository ContactRepository) CreateMutual(ctx context.Context, db *gorm.DB, ownerID, contactID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, pair := range [][2]string{{ownerID, contactID}, {contactID, ownerID}} {
			var count int64
			if err := tx.Model(&entity.Contact{}).
				Where("owner_id = ? AND contact_id = ?", pair[0], pair[1]).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&entity.Contact{OwnerID: pair[0], ContactID: pair[1]}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repository ContactRepository) FindAllByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]entity.Contact, error) {
	var contacts []entity.Contact
	err := db.WithContext(ctx).
		Preload("ContactUser").
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&contacts).Error
	return contacts, err
}

func (repository ContactRepository) FindContactIDs(ctx context.Context, db *gorm.DB, ownerID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&entity.Contact{}).
		Where("owner_id = ?", ownerID).
		Pluck("contact_id", &ids).Error
	return ids, err
}
