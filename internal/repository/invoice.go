package repository

import (
	"context"
	"time"

	"angohost-storefront/internal/model"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Invoice, error)
	MarkPaid(ctx context.Context, orderID string) error
}

type invoiceRepoImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepoImpl{
		db: db,
	}
}

func (r *invoiceRepoImpl) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error

	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepoImpl) MarkPaid(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("order_id = ? AND status = ?", orderID, "unpaid").
		Updates(map[string]interface{}{
			"status":     "paid",
			"updated_at": time.Now(),
		}).Error
}
