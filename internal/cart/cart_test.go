package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64p(v int64) *int64 { return &v }

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, int64(0), TotalPrice(nil))

	items := []Item{
		{ID: "a", Type: TypeDomain, Price: 15000},
		{ID: "b", Type: TypeHosting, Price: 45000},
		{ID: "c", Type: TypeEmail, Price: 9000},
	}
	assert.Equal(t, int64(69000), TotalPrice(items))
}

func TestRenewalTotal_MixedList(t *testing.T) {
	items := []Item{
		// renewal price overrides the first-year price
		{ID: "a", Type: TypeDomain, Price: 5000, Details: ItemDetails{RenewalPrice: int64p(12000)}},
		// no renewal price: falls back to price
		{ID: "b", Type: TypeHosting, Price: 45000},
	}
	assert.Equal(t, int64(57000), RenewalTotal(items))
}

func TestHasDomain(t *testing.T) {
	assert.False(t, HasDomain(nil))
	assert.False(t, HasDomain([]Item{{Type: TypeHosting}, {Type: TypeEmail}}))
	assert.True(t, HasDomain([]Item{{Type: TypeHosting}, {Type: TypeDomain}}))
}

func TestHasEmail(t *testing.T) {
	assert.False(t, HasEmail([]Item{{Type: TypeDomain}}))
	assert.True(t, HasEmail([]Item{{Type: TypeEmail}}))
}

func TestDomainNames(t *testing.T) {
	items := []Item{
		{Type: TypeDomain, Details: ItemDetails{DomainName: "empresa.ao"}},
		{Type: TypeHosting, Details: ItemDetails{DomainName: "ignored.ao"}},
		{Type: TypeDomain, Details: ItemDetails{DomainName: "loja.co.ao"}},
	}
	assert.Equal(t, []string{"empresa.ao", "loja.co.ao"}, DomainNames(items))
}

func TestComputeFlags(t *testing.T) {
	assert.Equal(t, Flags{}, ComputeFlags(nil))

	withDomain := []Item{{Type: TypeDomain}}
	assert.True(t, ComputeFlags(withDomain).HasDomain)
	assert.False(t, ComputeFlags(withDomain).HasOnlyHostingWithoutDomain)

	hostingOnly := []Item{{Type: TypeHosting, Details: ItemDetails{ExistingDomain: true}}}
	assert.True(t, ComputeFlags(hostingOnly).HasOnlyHostingWithoutDomain)

	// a second item disqualifies the hosting-only flag
	hostingPlus := append(hostingOnly, Item{Type: TypeEmail})
	assert.False(t, ComputeFlags(hostingPlus).HasOnlyHostingWithoutDomain)

	// hosting for a new domain does not count
	newDomainHosting := []Item{{Type: TypeHosting}}
	assert.False(t, ComputeFlags(newDomainHosting).HasOnlyHostingWithoutDomain)
}
