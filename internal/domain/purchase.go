package domain

import "time"

type PurchaseMethod string

const (
	MethodBalance PurchaseMethod = "balance"
	MethodCard    PurchaseMethod = "card"
	MethodCrypto  PurchaseMethod = "crypto"
)

// Valid reports whether m is a known method.
func (m PurchaseMethod) Valid() bool {
	switch m {
	case MethodBalance, MethodCard, MethodCrypto:
		return true
	}
	return false
}

type PurchaseVendor string

const (
	// VendorPrimary is the primary card processor.
	VendorPrimary PurchaseVendor = "primary"
	// VendorAlternate is the alternate fast processor, available below a price ceiling.
	VendorAlternate PurchaseVendor = "alternate"
)

func (v PurchaseVendor) Valid() bool {
	return v == VendorPrimary || v == VendorAlternate
}

type Stage string

const (
	StageStart     Stage = "start"
	StageUnlocking Stage = "unlocking"
	StageSuccess   Stage = "success"
	StageError     Stage = "error"
)

// Editable reports whether the buyer may still change the checkout.
func (s Stage) Editable() bool {
	return s == StageStart || s == StageError
}

type Page string

const (
	PagePurchase Page = "purchase"
	PageTransfer Page = "transfer"
)

type Platform string

const (
	PlatformIOS   Platform = "ios"
	PlatformOther Platform = "other"
)

// ParsePlatform maps client platform names onto the two platforms the checkout distinguishes.
func ParsePlatform(s string) Platform {
	if s == string(PlatformIOS) {
		return PlatformIOS
	}
	return PlatformOther
}

// PayExtraPreset identifies the "pay extra" option picked by the buyer.
type PayExtraPreset string

const (
	PayExtraNone   PayExtraPreset = "none"
	PayExtraLow    PayExtraPreset = "low"
	PayExtraMedium PayExtraPreset = "medium"
	PayExtraHigh   PayExtraPreset = "high"
	PayExtraCustom PayExtraPreset = "custom"
)

// PurchaseSummary is the price breakdown shown to the buyer.
type PurchaseSummary struct {
	BasePriceCents   int64 `json:"basePriceCents"`
	ExtraAmountCents int64 `json:"extraAmountCents"`
	TotalPriceCents  int64 `json:"totalPriceCents"`
	BalanceUsedCents int64 `json:"balanceUsedCents"`
	AmountDueCents   int64 `json:"amountDueCents"`
	// Provisional is set while the balance is still unknown.
	Provisional bool `json:"provisional"`
}

// MethodState describes whether a payment method can be picked.
type MethodState struct {
	Shown      bool `json:"shown"`
	Selectable bool `json:"selectable"`
	Disabled   bool `json:"disabled"`
}

// MethodGate holds the state of every payment method.
type MethodGate struct {
	Balance MethodState    `json:"balance"`
	Card    MethodState    `json:"card"`
	Crypto  MethodState    `json:"crypto"`
	Default PurchaseMethod `json:"default"`
}

// State returns the state of m.
func (g MethodGate) State(m PurchaseMethod) MethodState {
	switch m {
	case MethodBalance:
		return g.Balance
	case MethodCard:
		return g.Card
	case MethodCrypto:
		return g.Crypto
	}
	return MethodState{}
}

// Purchase is a recorded purchase attempt.
type Purchase struct {
	ID               string         `json:"id"`
	BuyerID          string         `json:"buyerId"`
	ContentID        string         `json:"contentId"`
	Method           PurchaseMethod `json:"method"`
	Vendor           PurchaseVendor `json:"vendor,omitempty"`
	TotalCents       int64          `json:"totalCents"`
	ExtraAmountCents int64          `json:"extraAmountCents"`
	BalanceUsedCents int64          `json:"balanceUsedCents"`
	AmountDueCents   int64          `json:"amountDueCents"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
}

const (
	PurchaseStatusCompleted = "completed"
	PurchaseStatusPending   = "pending_vendor"
)

// FundsRequest asks funds movement to settle a submitted checkout.
type FundsRequest struct {
	BuyerID   string
	ContentID string
	Method    PurchaseMethod
	// Vendor is only set for card payments.
	Vendor         PurchaseVendor
	Summary        PurchaseSummary
	AmountDueCents int64
	TopUpCents     int64
}
