package repository

import (
	"context"
	"time"

	"angohost-storefront/internal/model"

	"gorm.io/gorm"
)

type GatewayEventRepository interface {
	Exists(ctx context.Context, reference string) (bool, error)
	Record(ctx context.Context, reference, transactionID, source string, verified bool) error
}

type gatewayEventRepoImpl struct {
	db *gorm.DB
}

func NewGatewayEventRepository(db *gorm.DB) GatewayEventRepository {
	return &gatewayEventRepoImpl{db: db}
}

func (r *gatewayEventRepoImpl) Exists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GatewayEvent{}).
		Where("reference = ?", reference).
		Count(&count).Error

	return count > 0, err
}

func (r *gatewayEventRepoImpl) Record(ctx context.Context, reference, transactionID, source string, verified bool) error {
	return r.db.WithContext(ctx).Create(&model.GatewayEvent{
		Reference:     reference,
		TransactionID: transactionID,
		Source:        source,
		Verified:      verified,
		ProcessedAt:   time.Now(),
	}).Error
}
