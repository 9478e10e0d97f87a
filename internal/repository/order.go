package repository

import (
	"context"
	"time"

	"angohost-storefront/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByReference(ctx context.Context, reference string) (*model.Order, error)
	// MarkCompleted flips the order to completed only from a state still
	// awaiting payment, so a duplicate confirmation is a no-op.
	MarkCompleted(ctx context.Context, reference string) error
	CreateOrderItems(ctx context.Context, items []*model.OrderItem) error
	GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByReference(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) MarkCompleted(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where(`
			reference = ?
			AND status IN ?
		`,
			reference,
			[]string{"pending", "processing"},
		).
		Updates(map[string]interface{}{
			"status":     "completed",
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, items []*model.OrderItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}
