package model

import "time"

type Customer struct {
	ID             string `gorm:"primaryKey;size:64;not null"`
	Name           string `gorm:"size:128;not null"`
	Email          string `gorm:"size:128;index;not null"`
	Phone          string `gorm:"size:32"`
	NIF            string `gorm:"size:32;index"`
	BillingAddress string `gorm:"size:256"`
	City           string `gorm:"size:64"`
	PostalCode     string `gorm:"size:16"`
	Country        string `gorm:"size:64"`
	IDNumber       string `gorm:"size:32"`
	// account balance in AOA, debited by the balance payment method
	Balance   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	CustomerID    string `gorm:"size:64;index;not null"`
	Reference     string `gorm:"size:16;uniqueIndex;not null"` // human-facing AHyymmddnnnn
	Status        string `gorm:"size:32;index;not null"`       // pending, processing, completed, failed
	PaymentMethod string `gorm:"size:32;not null"`
	PaymentID     string `gorm:"size:64;index"`
	TotalAmount   int64  `gorm:"not null"`
	Currency      string `gorm:"size:8;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → orders.id
	OrderID string `gorm:"size:64;index;not null"`
	// freshly generated per checkout; cart items are synthesized bundles, not catalog rows
	ProductID  string `gorm:"size:64;not null"`
	Type       string `gorm:"size:32;not null"`
	Name       string `gorm:"size:128;not null"`
	DomainName string `gorm:"size:255"`
	Period     string `gorm:"size:16"`
	Quantity   int32  `gorm:"not null"`
	UnitPrice  int64  `gorm:"not null"`
	Currency   string `gorm:"size:8;not null"`

	CreatedAt time.Time
}

type Invoice struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	OrderID   string `gorm:"size:64;uniqueIndex;not null"`
	Number    string `gorm:"size:24;uniqueIndex;not null"` // INV-<reference>
	Amount    int64  `gorm:"not null"`
	Currency  string `gorm:"size:8;not null"`
	Status    string `gorm:"size:32;index;not null"` // unpaid, paid
	DueDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContactProfile struct {
	ID           string `gorm:"primaryKey;size:64;not null"`
	CustomerID   string `gorm:"size:64;index;not null"`
	ProfileName  string `gorm:"size:128;not null"`
	OwnerName    string `gorm:"size:128"`
	OwnerNIF     string `gorm:"size:32"`
	Organization string `gorm:"size:128"`
	Email        string `gorm:"size:128"`
	Phone        string `gorm:"size:32"`
	Address      string `gorm:"size:256"`
	City         string `gorm:"size:64"`
	Country      string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GatewayEvent records every confirmation signal that finalized a payment,
// keyed by reference so duplicate callbacks are detected. Source is "callback",
// "poll" or "manual" — manual confirmations are never merged with verified ones.
type GatewayEvent struct {
	ID            uint   `gorm:"primaryKey"`
	Reference     string `gorm:"size:16;index;not null"`
	TransactionID string `gorm:"size:64;index;not null"`
	Source        string `gorm:"size:16;not null"`
	Verified      bool   `gorm:"not null"`
	ProcessedAt   time.Time
	CreatedAt     time.Time
}
