package cart

type ItemType string

const (
	TypeDomain    ItemType = "domain"
	TypeHosting   ItemType = "hosting"
	TypeVPS       ItemType = "vps"
	TypeEmail     ItemType = "email"
	TypeOffice365 ItemType = "office365"
)

type Period string

const (
	PeriodYearly  Period = "yearly"
	PeriodMonthly Period = "monthly"
)

// Item is one purchasable line in the cart. Prices are AOA.
type Item struct {
	ID      string      `json:"id"`
	Type    ItemType    `json:"type"`
	Name    string      `json:"name"`
	Price   int64       `json:"price"`
	Period  Period      `json:"period"`
	Details ItemDetails `json:"details"`
}

type ItemDetails struct {
	DomainName     string `json:"domain_name,omitempty"`
	RenewalPrice   *int64 `json:"renewal_price,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
	ContractYears  int    `json:"contract_years,omitempty"`
	ExistingDomain bool   `json:"existing_domain,omitempty"`
}

// Customer is the billing identity attached to a checkout session.
type Customer struct {
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	NIF             string           `json:"nif"`
	BillingAddress  string           `json:"billing_address"`
	City            string           `json:"city"`
	PostalCode      string           `json:"postal_code"`
	Country         string           `json:"country"`
	IDNumber        string           `json:"id_number"`
	DomainOwnership *DomainOwnership `json:"domain_ownership,omitempty"`
}

// DomainOwnership holds registrant data when it differs from the purchaser.
type DomainOwnership struct {
	OwnerName    string `json:"owner_name"`
	OwnerNIF     string `json:"owner_nif"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
}

// ContactProfile is a reusable registrant identity, selectable per purchase.
type ContactProfile struct {
	ID           string `json:"id"`
	ProfileName  string `json:"profile_name"`
	OwnerName    string `json:"owner_name"`
	OwnerNIF     string `json:"owner_nif"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

type PaymentMethod string

const (
	MethodGateway      PaymentMethod = "gateway"
	MethodBankTransfer PaymentMethod = "bank-transfer"
	MethodBalance      PaymentMethod = "account-balance"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
)

// PaymentInfo tracks the payment state of the current checkout attempt.
// HasDomain/HasEmail are snapshotted at creation time.
type PaymentInfo struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Reference     string        `json:"reference"`
	HasDomain     bool          `json:"has_domain"`
	HasEmail      bool          `json:"has_email"`
}

// TotalPrice sums item prices.
func TotalPrice(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return total
}

// RenewalTotal sums renewal prices, falling back to the item price for
// items without one.
func RenewalTotal(items []Item) int64 {
	var total int64
	for _, it := range items {
		if it.Details.RenewalPrice != nil {
			total += *it.Details.RenewalPrice
		} else {
			total += it.Price
		}
	}
	return total
}

func HasDomain(items []Item) bool {
	for _, it := range items {
		if it.Type == TypeDomain {
			return true
		}
	}
	return false
}

func HasEmail(items []Item) bool {
	for _, it := range items {
		if it.Type == TypeEmail {
			return true
		}
	}
	return false
}

// DomainNames projects the domain names of domain-type items.
func DomainNames(items []Item) []string {
	var names []string
	for _, it := range items {
		if it.Type == TypeDomain && it.Details.DomainName != "" {
			names = append(names, it.Details.DomainName)
		}
	}
	return names
}

// Flags are the eligibility flags derived from the current item list.
// They gate which payment methods and flows are offered, so they are
// recomputed fresh on every read, never cached.
type Flags struct {
	HasDomain                   bool `json:"has_domain"`
	HasOnlyHostingWithoutDomain bool `json:"has_only_hosting_without_domain"`
}

func ComputeFlags(items []Item) Flags {
	return Flags{
		HasDomain: HasDomain(items),
		HasOnlyHostingWithoutDomain: len(items) == 1 &&
			items[0].Type == TypeHosting &&
			items[0].Details.ExistingDomain,
	}
}
