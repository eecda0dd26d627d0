package domain

import "time"

// Content is a piece of gated content that can be bought.
type Content struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PurchaseConditions are the price terms of a content item. They do not change
// during a checkout.
type PurchaseConditions struct {
	PriceCents int64 `json:"priceCents"`
}

// Conditions returns the purchase conditions of c.
func (c Content) Conditions() PurchaseConditions {
	return PurchaseConditions{PriceCents: c.PriceCents}
}
