package repository

import (
	"context"
	"errors"
	"time"

	"angohost-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientBalance is returned when a conditional debit matched no
// row, i.e. the customer's balance was below the requested amount.
var ErrInsufficientBalance = errors.New("insufficient account balance")

type CustomerRepository interface {
	Upsert(ctx context.Context, customer *model.Customer) error
	Get(ctx context.Context, id string) (*model.Customer, error)
	GetBalance(ctx context.Context, id string) (int64, error)
	// DebitBalance decrements the balance only when it covers the amount,
	// as a single conditional update so concurrent checkouts cannot
	// double-spend.
	DebitBalance(ctx context.Context, id string, amount int64) error
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) Upsert(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "nif", "billing_address",
			"city", "postal_code", "country", "id_number", "updated_at",
		}),
	}).Create(&customer).Error
}

func (r *customerRepoImpl) Get(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error

	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepoImpl) GetBalance(ctx context.Context, id string) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Pluck("balance", &balance).
		Error

	return balance, err
}

func (r *customerRepoImpl) DebitBalance(ctx context.Context, id string, amount int64) error {
	result := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}
