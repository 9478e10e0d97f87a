package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	keyCart            = "ah_cart"
	keyCustomer        = "ah_customer"
	keyPayment         = "ah_payment"
	keyContactProfiles = "ah_contact_profiles"
	keySelectedProfile = "ah_selected_profile"
)

// Store holds the per-session checkout state: items, billing customer,
// payment info and contact profiles. Every mutation re-serializes the
// affected slice to the KV store immediately; loads that hit a missing or
// corrupt value yield the empty state instead of failing.
type Store struct {
	kv  KV
	sfg singleflight.Group // dedups concurrent loads of the same key
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func storeKey(prefix, sessionID string) string {
	return fmt.Sprintf("%s:%s", prefix, sessionID)
}

// NewItemID embeds the creation timestamp so duplicate additions of the
// same product still get distinct ids.
func NewItemID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func loadJSON[T any](s *Store, ctx context.Context, key string) (T, error) {
	var zero T
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(v.([]byte), &out); err != nil {
		return zero, err
	}
	return out, nil
}

func (s *Store) saveJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

// Items returns the current item list. Missing or corrupt snapshots read
// as an empty cart.
func (s *Store) Items(ctx context.Context, sessionID string) []Item {
	items, err := loadJSON[[]Item](s, ctx, storeKey(keyCart, sessionID))
	if err != nil {
		return nil
	}
	return items
}

func (s *Store) AddItem(ctx context.Context, sessionID string, item Item) (Item, error) {
	if item.ID == "" {
		item.ID = NewItemID()
	}
	items := append(s.Items(ctx, sessionID), item)
	if err := s.saveJSON(ctx, storeKey(keyCart, sessionID), items); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Store) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	items := s.Items(ctx, sessionID)
	kept := items[:0]
	for _, it := range items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	return s.saveJSON(ctx, storeKey(keyCart, sessionID), kept)
}

func (s *Store) UpdateItem(ctx context.Context, sessionID string, item Item) error {
	items := s.Items(ctx, sessionID)
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			break
		}
	}
	return s.saveJSON(ctx, storeKey(keyCart, sessionID), items)
}

func (s *Store) ClearCart(ctx context.Context, sessionID string) error {
	return s.saveJSON(ctx, storeKey(keyCart, sessionID), []Item{})
}

func (s *Store) TotalPrice(ctx context.Context, sessionID string) int64 {
	return TotalPrice(s.Items(ctx, sessionID))
}

func (s *Store) RenewalTotal(ctx context.Context, sessionID string) int64 {
	return RenewalTotal(s.Items(ctx, sessionID))
}

func (s *Store) Flags(ctx context.Context, sessionID string) Flags {
	return ComputeFlags(s.Items(ctx, sessionID))
}

// Customer returns the billing identity attached to the session, or nil.
func (s *Store) Customer(ctx context.Context, sessionID string) *Customer {
	c, err := loadJSON[*Customer](s, ctx, storeKey(keyCustomer, sessionID))
	if err != nil {
		return nil
	}
	return c
}

func (s *Store) SetCustomer(ctx context.Context, sessionID string, c *Customer) error {
	return s.saveJSON(ctx, storeKey(keyCustomer, sessionID), c)
}

func (s *Store) Payment(ctx context.Context, sessionID string) *PaymentInfo {
	p, err := loadJSON[*PaymentInfo](s, ctx, storeKey(keyPayment, sessionID))
	if err != nil {
		return nil
	}
	return p
}

func (s *Store) SetPayment(ctx context.Context, sessionID string, p *PaymentInfo) error {
	return s.saveJSON(ctx, storeKey(keyPayment, sessionID), p)
}

func (s *Store) ClearPayment(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, storeKey(keyPayment, sessionID))
}

func (s *Store) Profiles(ctx context.Context, sessionID string) []ContactProfile {
	profiles, err := loadJSON[[]ContactProfile](s, ctx, storeKey(keyContactProfiles, sessionID))
	if err != nil {
		return nil
	}
	return profiles
}

// SaveProfile inserts or replaces a contact profile by id.
func (s *Store) SaveProfile(ctx context.Context, sessionID string, p ContactProfile) (ContactProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	profiles := s.Profiles(ctx, sessionID)
	replaced := false
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}
	if err := s.saveJSON(ctx, storeKey(keyContactProfiles, sessionID), profiles); err != nil {
		return ContactProfile{}, err
	}
	return p, nil
}

func (s *Store) DeleteProfile(ctx context.Context, sessionID, profileID string) error {
	profiles := s.Profiles(ctx, sessionID)
	kept := profiles[:0]
	for _, p := range profiles {
		if p.ID != profileID {
			kept = append(kept, p)
		}
	}
	return s.saveJSON(ctx, storeKey(keyContactProfiles, sessionID), kept)
}

func (s *Store) SelectProfile(ctx context.Context, sessionID, profileID string) error {
	return s.saveJSON(ctx, storeKey(keySelectedProfile, sessionID), profileID)
}

// SelectedProfile resolves the selected profile id against the profile
// list. The selection is a weak reference: if the profile was deleted
// since it was selected, this returns nil rather than a dangling id.
func (s *Store) SelectedProfile(ctx context.Context, sessionID string) *ContactProfile {
	id, err := loadJSON[string](s, ctx, storeKey(keySelectedProfile, sessionID))
	if err != nil || id == "" {
		return nil
	}
	for _, p := range s.Profiles(ctx, sessionID) {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

// Reset drops the whole session state. Used when a session is torn down,
// not during normal checkout.
func (s *Store) Reset(ctx context.Context, sessionID string) {
	for _, prefix := range []string{keyCart, keyCustomer, keyPayment, keyContactProfiles, keySelectedProfile} {
		if err := s.kv.Delete(ctx, storeKey(prefix, sessionID)); err != nil {
			log.Printf("cart store reset %s: %v", prefix, err)
		}
	}
}
