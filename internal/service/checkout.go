package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/model"
	"angohost-storefront/internal/repository"

	"github.com/google/uuid"
)

const currency = "AOA"

// CheckoutResult is what a completed checkout call hands back to the API
// layer: the persisted order coordinates, the resulting payment state and,
// for the gateway method, the frame session to present.
type CheckoutResult struct {
	OrderID   string             `json:"order_id"`
	Reference string             `json:"reference"`
	Method    cart.PaymentMethod `json:"method"`
	Status    cart.PaymentStatus `json:"status"`
	Total     int64              `json:"total"`
	Gateway   *GatewaySession    `json:"gateway,omitempty"`
}

type CheckoutService interface {
	// Checkout runs the payment-method handler for the session's cart:
	// validates preconditions, persists the order graph and transitions
	// the cart's payment state. method defaults to bank transfer.
	Checkout(ctx context.Context, userID, sessionID string, method cart.PaymentMethod) (*CheckoutResult, error)

	// RetrySession re-requests a gateway frame session for an order that
	// already exists, after a bootstrap failure or frame reload.
	RetrySession(ctx context.Context, sessionID, reference string) (*GatewaySession, error)

	// ConfirmManually is the trust-the-user fallback for a failed gateway
	// integration: it synthesizes a transaction id and finalizes the
	// attempt as an unverified confirmation. Returns the transaction id.
	ConfirmManually(ctx context.Context, sessionID, reference string) (string, error)

	// CancelPayment tears down the active gateway session as a
	// user-initiated cancellation and returns the checkout to method
	// selection.
	CancelPayment(ctx context.Context, sessionID, reference string) error

	// FinalizePayment flips order, invoice and cart payment state to
	// completed. Safe to invoke more than once per attempt.
	FinalizePayment(ctx context.Context, sessionID, reference, transactionID, source string, verified bool) error
}

type checkoutServiceImpl struct {
	carts         *cart.Store
	bootstrapper  *SessionBootstrapper
	confirmations *ConfirmationService
	customerRepo  repository.CustomerRepository
	orderRepo     repository.OrderRepository
	invoiceRepo   repository.InvoiceRepository
	eventRepo     repository.GatewayEventRepository
}

func NewCheckoutService(
	carts *cart.Store,
	bootstrapper *SessionBootstrapper,
	confirmations *ConfirmationService,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	eventRepo repository.GatewayEventRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		carts:         carts,
		bootstrapper:  bootstrapper,
		confirmations: confirmations,
		customerRepo:  customerRepo,
		orderRepo:     orderRepo,
		invoiceRepo:   invoiceRepo,
		eventRepo:     eventRepo,
	}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, userID, sessionID string, method cart.PaymentMethod) (*CheckoutResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	items := s.carts.Items(ctx, sessionID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	customer := s.carts.Customer(ctx, sessionID)
	if customer == nil {
		return nil, ErrMissingCustomer
	}

	if method == "" {
		// safest no-external-dependency fallback
		method = cart.MethodBankTransfer
	}

	orderID := uuid.NewString()
	reference := NewOrderReference(time.Now())

	switch method {
	case cart.MethodGateway:
		return s.payWithGateway(ctx, userID, sessionID, orderID, reference, customer, items)
	case cart.MethodBankTransfer:
		return s.payWithBankTransfer(ctx, userID, sessionID, orderID, reference, customer, items)
	case cart.MethodBalance:
		return s.payWithBalance(ctx, userID, sessionID, orderID, reference, customer, items)
	default:
		return nil, fmt.Errorf("unknown payment method %q", method)
	}
}

func (s *checkoutServiceImpl) payWithGateway(ctx context.Context, userID, sessionID, orderID, reference string, customer *cart.Customer, items []cart.Item) (*CheckoutResult, error) {
	total := cart.TotalPrice(items)

	if err := s.placeOrder(ctx, userID, orderID, reference, customer, items, "processing", cart.MethodGateway); err != nil {
		return nil, err
	}

	if err := s.setPaymentPending(ctx, sessionID, cart.MethodGateway, reference, items); err != nil {
		return nil, err
	}

	session := s.bootstrapper.InitializePayment(ctx, total, reference)
	if session.State == SessionReady {
		s.watchSession(sessionID, reference, session.Token)
	}

	return &CheckoutResult{
		OrderID:   orderID,
		Reference: reference,
		Method:    cart.MethodGateway,
		Status:    cart.StatusPending,
		Total:     total,
		Gateway:   session,
	}, nil
}

func (s *checkoutServiceImpl) payWithBankTransfer(ctx context.Context, userID, sessionID, orderID, reference string, customer *cart.Customer, items []cart.Item) (*CheckoutResult, error) {
	if err := s.placeOrder(ctx, userID, orderID, reference, customer, items, "pending", cart.MethodBankTransfer); err != nil {
		return nil, err
	}

	if err := s.setPaymentPending(ctx, sessionID, cart.MethodBankTransfer, reference, items); err != nil {
		return nil, err
	}

	// terminal until manual reconciliation
	return &CheckoutResult{
		OrderID:   orderID,
		Reference: reference,
		Method:    cart.MethodBankTransfer,
		Status:    cart.StatusPending,
		Total:     cart.TotalPrice(items),
	}, nil
}

func (s *checkoutServiceImpl) payWithBalance(ctx context.Context, userID, sessionID, orderID, reference string, customer *cart.Customer, items []cart.Item) (*CheckoutResult, error) {
	total := cart.TotalPrice(items)

	// strict pre-check: no writes of any kind on an insufficient balance
	balance, err := s.customerRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read account balance: %w", err)
	}
	if balance < total {
		return nil, ErrInsufficientBalance
	}

	// conditional debit; a concurrent attempt that drained the balance in
	// between makes this a no-op and the checkout fails without writes
	if err := s.customerRepo.DebitBalance(ctx, userID, total); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit account balance: %w", err)
	}

	if err := s.placeOrder(ctx, userID, orderID, reference, customer, items, "pending", cart.MethodBalance); err != nil {
		return nil, err
	}

	if err := s.setPaymentPending(ctx, sessionID, cart.MethodBalance, reference, items); err != nil {
		return nil, err
	}

	// no external confirmation: complete synchronously
	transactionID := "BAL-" + reference
	if err := s.FinalizePayment(ctx, sessionID, reference, transactionID, "balance", true); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:   orderID,
		Reference: reference,
		Method:    cart.MethodBalance,
		Status:    cart.StatusCompleted,
		Total:     total,
	}, nil
}

// placeOrder issues the four dependency-ordered writes for one checkout
// attempt. Any failure aborts immediately and reports the failed stage;
// later stages are never attempted.
func (s *checkoutServiceImpl) placeOrder(ctx context.Context, userID, orderID, reference string, customer *cart.Customer, items []cart.Item, status string, method cart.PaymentMethod) error {
	total := cart.TotalPrice(items)

	err := s.customerRepo.Upsert(ctx, &model.Customer{
		ID:             userID,
		Name:           customer.Name,
		Email:          customer.Email,
		Phone:          customer.Phone,
		NIF:            customer.NIF,
		BillingAddress: customer.BillingAddress,
		City:           customer.City,
		PostalCode:     customer.PostalCode,
		Country:        customer.Country,
		IDNumber:       customer.IDNumber,
	})
	if err != nil {
		return &PersistError{Stage: StageCustomer, Err: err}
	}

	err = s.orderRepo.Create(ctx, &model.Order{
		ID:            orderID,
		CustomerID:    userID,
		Reference:     reference,
		Status:        status,
		PaymentMethod: string(method),
		PaymentID:     reference,
		TotalAmount:   total,
		Currency:      currency,
	})
	if err != nil {
		return &PersistError{Stage: StageOrder, Err: err}
	}

	orderItems := make([]*model.OrderItem, len(items))
	for i, it := range items {
		quantity := int32(1)
		if it.Details.Quantity > 0 {
			quantity = int32(it.Details.Quantity)
		}
		orderItems[i] = &model.OrderItem{
			OrderID: orderID,
			// cart items are synthesized bundles with no stable catalog id
			ProductID:  uuid.NewString(),
			Type:       string(it.Type),
			Name:       it.Name,
			DomainName: it.Details.DomainName,
			Period:     string(it.Period),
			Quantity:   quantity,
			UnitPrice:  it.Price,
			Currency:   currency,
		}
	}
	if err := s.orderRepo.CreateOrderItems(ctx, orderItems); err != nil {
		return &PersistError{Stage: StageItems, Err: err}
	}

	err = s.invoiceRepo.Create(ctx, &model.Invoice{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		Number:   "INV-" + reference,
		Amount:   total,
		Currency: currency,
		Status:   "unpaid",
		DueDate:  time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		return &PersistError{Stage: StageInvoice, Err: err}
	}

	return nil
}

// setPaymentPending snapshots the cart composition flags and writes the
// pending payment state for the new attempt.
func (s *checkoutServiceImpl) setPaymentPending(ctx context.Context, sessionID string, method cart.PaymentMethod, reference string, items []cart.Item) error {
	return s.carts.SetPayment(ctx, sessionID, &cart.PaymentInfo{
		Method:    method,
		Status:    cart.StatusPending,
		Reference: reference,
		HasDomain: cart.HasDomain(items),
		HasEmail:  cart.HasEmail(items),
	})
}

// watchSession starts dual-channel confirmation watching for a ready
// frame session.
func (s *checkoutServiceImpl) watchSession(sessionID, reference, frameToken string) {
	s.confirmations.Watch(reference, frameToken,
		func(ctx context.Context, ref, transactionID, source string) {
			if err := s.FinalizePayment(ctx, sessionID, ref, transactionID, source, true); err != nil {
				log.Printf("finalize payment %s: %v", ref, err)
			}
		},
		func(ctx context.Context, ref string, expired bool) {
			if expired {
				log.Printf("payment session %s expired without confirmation", ref)
			}
			if err := s.carts.ClearPayment(ctx, sessionID); err != nil {
				log.Printf("clear payment state %s: %v", ref, err)
			}
		},
	)
}

func (s *checkoutServiceImpl) RetrySession(ctx context.Context, sessionID, reference string) (*GatewaySession, error) {
	order, err := s.orderRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", reference, err)
	}

	s.bootstrapper.ResetPayment(reference)
	session := s.bootstrapper.InitializePayment(ctx, order.TotalAmount, reference)
	if session.State == SessionReady {
		s.watchSession(sessionID, reference, session.Token)
	}
	return session, nil
}

func (s *checkoutServiceImpl) ConfirmManually(ctx context.Context, sessionID, reference string) (string, error) {
	payment := s.carts.Payment(ctx, sessionID)
	if payment == nil || payment.Reference != reference {
		return "", ErrNoActiveSession
	}

	// trust-the-user path: no gateway verification happened. Kept loudly
	// distinct from verified confirmations.
	transactionID := "MANUAL-" + uuid.NewString()
	log.Printf("manual payment confirmation accepted for %s without gateway verification", reference)

	s.confirmations.Discard(reference)

	if err := s.FinalizePayment(ctx, sessionID, reference, transactionID, "manual", false); err != nil {
		return "", err
	}
	return transactionID, nil
}

func (s *checkoutServiceImpl) CancelPayment(ctx context.Context, sessionID, reference string) error {
	err := s.confirmations.Cancel(ctx, reference, func(ctx context.Context, ref string, _ bool) {
		if err := s.carts.ClearPayment(ctx, sessionID); err != nil {
			log.Printf("clear payment state %s: %v", ref, err)
		}
	})
	if err != nil {
		return err
	}
	s.bootstrapper.ResetPayment(reference)
	return ErrPaymentCancelled
}

func (s *checkoutServiceImpl) FinalizePayment(ctx context.Context, sessionID, reference, transactionID, source string, verified bool) error {
	// second invocation for an attempt already completed is a no-op
	payment := s.carts.Payment(ctx, sessionID)
	if payment != nil && payment.Reference == reference && payment.Status == cart.StatusCompleted {
		return nil
	}
	if processed, err := s.eventRepo.Exists(ctx, reference); err == nil && processed {
		return nil
	}

	order, err := s.orderRepo.FindByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("find order %s: %w", reference, err)
	}

	if err := s.orderRepo.MarkCompleted(ctx, reference); err != nil {
		return fmt.Errorf("mark order completed: %w", err)
	}
	if err := s.invoiceRepo.MarkPaid(ctx, order.ID); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}

	if err := s.eventRepo.Record(ctx, reference, transactionID, source, verified); err != nil {
		log.Printf("record gateway event %s: %v", reference, err)
	}

	completed := &cart.PaymentInfo{
		Method:        cart.PaymentMethod(order.PaymentMethod),
		Status:        cart.StatusCompleted,
		TransactionID: transactionID,
		Reference:     reference,
	}
	if payment != nil && payment.Reference == reference {
		completed.HasDomain = payment.HasDomain
		completed.HasEmail = payment.HasEmail
	}
	if err := s.carts.SetPayment(ctx, sessionID, completed); err != nil {
		return fmt.Errorf("set payment completed: %w", err)
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.bootstrapper.ResetPayment(reference)
	return nil
}
