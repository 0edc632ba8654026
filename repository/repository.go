package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository holds the CRUD shared by every entity. The db handle is passed
// per call so the same method works inside and outside a transaction.
type Repository[T any] struct{}

func (repo Repository[T]) Save(ctx context.Context, db *gorm.DB, entity *T) error {
	return db.WithContext(ctx).Create(entity).Error
}

func (repo Repository[T]) UpdateColumns(ctx context.Context, db *gorm.DB, entity *T, columns map[string]any) error {
	return db.WithContext(ctx).Model(entity).Updates(columns).Error
}

func (repo Repository[T]) FindById(ctx context.Context, db *gorm.DB, entity *T, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Take(entity).Error
}

func (repo Repository[T]) ExistsById(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
