package dto

import "angohost-storefront/internal/cart"

type AddItemRequest struct {
	Type    cart.ItemType    `json:"type"`
	Name    string           `json:"name"`
	Price   int64            `json:"price"`
	Period  cart.Period      `json:"period"`
	Details cart.ItemDetails `json:"details"`
}

type CartResponse struct {
	Items        []cart.Item `json:"items"`
	Total        int64       `json:"total"`
	RenewalTotal int64       `json:"renewal_total"`
	Flags        cart.Flags  `json:"flags"`
}

type CheckoutRequest struct {
	Method cart.PaymentMethod `json:"method"`
}

type SessionRequest struct {
	Reference string `json:"reference"`
}

type ManualConfirmResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type SelectProfileRequest struct {
	ProfileID string `json:"profile_id"`
}
