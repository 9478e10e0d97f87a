package repository

import (
	"context"
	"time"

	"angohost-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactProfileRepository interface {
	Upsert(ctx context.Context, profile *model.ContactProfile) error
	ListByCustomer(ctx context.Context, customerID string) ([]*model.ContactProfile, error)
	Delete(ctx context.Context, customerID, profileID string) error
}

type contactProfileRepoImpl struct {
	db *gorm.DB
}

func NewContactProfileRepository(db *gorm.DB) ContactProfileRepository {
	return &contactProfileRepoImpl{
		db: db,
	}
}

func (r *contactProfileRepoImpl) Upsert(ctx context.Context, profile *model.ContactProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"profile_name": profile.ProfileName,
			"owner_name":   profile.OwnerName,
			"owner_nif":    profile.OwnerNIF,
			"organization": profile.Organization,
			"email":        profile.Email,
			"phone":        profile.Phone,
			"address":      profile.Address,
			"city":         profile.City,
			"country":      profile.Country,
			"updated_at":   time.Now(),
		}),
	}).Create(&profile).Error
}

func (r *contactProfileRepoImpl) ListByCustomer(ctx context.Context, customerID string) ([]*model.ContactProfile, error) {
	var profiles []*model.ContactProfile
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&profiles).Error

	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *contactProfileRepoImpl) Delete(ctx context.Context, customerID, profileID string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND id = ?", customerID, profileID).
		Delete(&model.ContactProfile{}).Error
}
