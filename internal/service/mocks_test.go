package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"angohost-storefront/internal/client"
	"angohost-storefront/internal/model"
	"angohost-storefront/internal/repository"

	"gorm.io/gorm"
)

// mockCustomerRepo implements repository.CustomerRepository with an
// in-memory balance so debits can be counted and verified.
type mockCustomerRepo struct {
	mu         sync.Mutex
	balance    int64
	upserts    []*model.Customer
	debitCalls int
	upsertErr  error
}

func (m *mockCustomerRepo) Upsert(_ context.Context, customer *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, customer)
	return nil
}

func (m *mockCustomerRepo) Get(_ context.Context, id string) (*model.Customer, error) {
	return &model.Customer{ID: id, Balance: m.balance}, nil
}

func (m *mockCustomerRepo) GetBalance(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

func (m *mockCustomerRepo) DebitBalance(_ context.Context, _ string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance < amount {
		return repository.ErrInsufficientBalance
	}
	m.debitCalls++
	m.balance -= amount
	return nil
}

func (m *mockCustomerRepo) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts) + m.debitCalls
}

// mockOrderRepo records created orders and items, with injectable
// failures per stage.
type mockOrderRepo struct {
	mu        sync.Mutex
	orders    []*model.Order
	items     []*model.OrderItem
	completed []string
	createErr error
	itemsErr  error
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepo) FindByReference(_ context.Context, reference string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) MarkCompleted(_ context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, reference)
	for _, o := range m.orders {
		if o.Reference == reference {
			o.Status = "completed"
		}
	}
	return nil
}

func (m *mockOrderRepo) CreateOrderItems(_ context.Context, items []*model.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemsErr != nil {
		return m.itemsErr
	}
	m.items = append(m.items, items...)
	return nil
}

func (m *mockOrderRepo) GetOrderItems(_ context.Context, orderID string) ([]*model.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type mockInvoiceRepo struct {
	mu       sync.Mutex
	invoices []*model.Invoice
	paid     []string
}

func (m *mockInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, invoice)
	return nil
}

func (m *mockInvoiceRepo) FindByOrderID(_ context.Context, orderID string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.OrderID == orderID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) MarkPaid(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paid = append(m.paid, orderID)
	for _, inv := range m.invoices {
		if inv.OrderID == orderID {
			inv.Status = "paid"
		}
	}
	return nil
}

type mockEventRepo struct {
	mu     sync.Mutex
	events []*model.GatewayEvent
}

func (m *mockEventRepo) Exists(_ context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEventRepo) Record(_ context.Context, reference, transactionID, source string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, &model.GatewayEvent{
		Reference:     reference,
		TransactionID: transactionID,
		Source:        source,
		Verified:      verified,
	})
	return nil
}

// mockEmisClient implements client.EmisClient with scripted responses and
// an atomic poll counter.
type mockEmisClient struct {
	mu         sync.Mutex
	sessionErr error
	statusErr  error
	status     atomic.Pointer[client.PaymentStatus]
	polls      atomic.Int64
}

func (m *mockEmisClient) setStatusErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErr = err
}

func (m *mockEmisClient) CreateFrameToken(_ context.Context, _ int64, reference string) (*client.FrameSession, error) {
	m.mu.Lock()
	sessionErr := m.sessionErr
	m.mu.Unlock()
	if sessionErr != nil {
		return nil, sessionErr
	}
	return &client.FrameSession{
		Token:    "tok-" + reference,
		FrameURL: "https://gateway.example/frame/tok-" + reference,
	}, nil
}

func (m *mockEmisClient) GetPaymentStatus(_ context.Context, _ string) (*client.PaymentStatus, error) {
	m.polls.Add(1)
	m.mu.Lock()
	statusErr := m.statusErr
	m.mu.Unlock()
	if statusErr != nil {
		return nil, statusErr
	}
	if s := m.status.Load(); s != nil {
		return s, nil
	}
	return &client.PaymentStatus{Status: "pending"}, nil
}

var errBoom = errors.New("boom")
