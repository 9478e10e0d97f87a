package repository

import (
	"context"
	"testing"
	"time"

	"angohost-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.ContactProfile{},
		&model.GatewayEvent{},
	))
	return db
}

func TestCustomerRepo_DebitBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Customer{
		ID:    "cust-1",
		Name:  "Maria Santos",
		Email: "maria@example.com",
	}))
	require.NoError(t, db.Model(&model.Customer{}).Where("id = ?", "cust-1").
		Update("balance", 20000).Error)

	// insufficient: the conditional update matches nothing, balance untouched
	err := repo.DebitBalance(ctx, "cust-1", 25000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := repo.GetBalance(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), balance)

	// sufficient: one debit, exact remainder
	require.NoError(t, repo.DebitBalance(ctx, "cust-1", 15000))

	balance, err = repo.GetBalance(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestCustomerRepo_UpsertKeepsBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Customer{ID: "cust-1", Name: "Maria", Email: "maria@example.com"}))
	require.NoError(t, db.Model(&model.Customer{}).Where("id = ?", "cust-1").
		Update("balance", 9000).Error)

	// checkout re-upserts billing data; the balance column is not assigned
	require.NoError(t, repo.Upsert(ctx, &model.Customer{ID: "cust-1", Name: "Maria Santos", Email: "maria@example.com"}))

	customer, err := repo.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", customer.Name)
	assert.Equal(t, int64(9000), customer.Balance)
}

func TestOrderRepo_MarkCompletedIsStatusGuarded(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Order{
		ID:            "ord-1",
		CustomerID:    "cust-1",
		Reference:     "AH2608291234",
		Status:        "processing",
		PaymentMethod: "gateway",
		TotalAmount:   45000,
		Currency:      "AOA",
	}))

	require.NoError(t, repo.MarkCompleted(ctx, "AH2608291234"))
	order, err := repo.FindByReference(ctx, "AH2608291234")
	require.NoError(t, err)
	assert.Equal(t, "completed", order.Status)

	firstUpdate := order.UpdatedAt

	// a duplicate confirmation finds no row in an awaiting state
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.MarkCompleted(ctx, "AH2608291234"))
	order, err = repo.FindByReference(ctx, "AH2608291234")
	require.NoError(t, err)
	assert.Equal(t, "completed", order.Status)
	assert.Equal(t, firstUpdate, order.UpdatedAt)
}

func TestInvoiceRepo_MarkPaid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Invoice{
		ID:       "inv-1",
		OrderID:  "ord-1",
		Number:   "INV-AH2608291234",
		Amount:   45000,
		Currency: "AOA",
		Status:   "unpaid",
		DueDate:  time.Now().AddDate(0, 0, 7),
	}))

	require.NoError(t, repo.MarkPaid(ctx, "ord-1"))

	invoice, err := repo.FindByOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "paid", invoice.Status)
}

func TestContactProfileRepo_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.ContactProfile{
		ID:          "prof-1",
		CustomerID:  "cust-1",
		ProfileName: "Empresa Lda",
		OwnerNIF:    "5400000000",
	}))
	require.NoError(t, repo.Upsert(ctx, &model.ContactProfile{
		ID:          "prof-1",
		CustomerID:  "cust-1",
		ProfileName: "Empresa Lda (atualizado)",
		OwnerNIF:    "5400000000",
	}))

	profiles, err := repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Empresa Lda (atualizado)", profiles[0].ProfileName)

	// deletes are scoped to the owning customer
	require.NoError(t, repo.Delete(ctx, "cust-2", "prof-1"))
	profiles, err = repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	require.NoError(t, repo.Delete(ctx, "cust-1", "prof-1"))
	profiles, err = repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestGatewayEventRepo_RecordAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatewayEventRepository(db)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "AH2608291234")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Record(ctx, "AH2608291234", "TX-1", "callback", true))

	exists, err = repo.Exists(ctx, "AH2608291234")
	require.NoError(t, err)
	assert.True(t, exists)
}
