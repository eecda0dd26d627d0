package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"contentcheckout/internal/domain"
	checkoutsvc "contentcheckout/internal/service/checkout"
)

type money struct {
	CentAmount int64  `json:"centAmount"`
	Amount     string `json:"amount"`
}

func toMoney(cents int64) money {
	return money{CentAmount: cents, Amount: decimal.New(cents, -2).StringFixed(2)}
}

type summaryResponse struct {
	BasePrice   money `json:"basePrice"`
	ExtraAmount money `json:"extraAmount"`
	TotalPrice  money `json:"totalPrice"`
	BalanceUsed money `json:"balanceUsed"`
	AmountDue   money `json:"amountDue"`
	Provisional bool  `json:"provisional"`
}

type checkoutResponse struct {
	ID                        string                `json:"id"`
	BuyerID                   string                `json:"buyerId"`
	ContentID                 string                `json:"contentId"`
	Stage                     domain.Stage          `json:"stage"`
	Page                      domain.Page           `json:"page"`
	Method                    domain.PurchaseMethod `json:"method"`
	Vendor                    domain.PurchaseVendor `json:"vendor"`
	ExtraPreset               domain.PayExtraPreset `json:"extraPreset"`
	Summary                   summaryResponse       `json:"summary"`
	Methods                   domain.MethodGate     `json:"methods"`
	Balance                   *money                `json:"balance"`
	Error                     *domain.PurchaseError `json:"error,omitempty"`
	TransferAcknowledged      bool                  `json:"transferAcknowledged"`
	HasStandaloneTransferPage bool                  `json:"hasStandaloneTransferPage"`
	Submittable               bool                  `json:"submittable"`
	CanClose                  bool                  `json:"canClose"`
}

func toCheckoutResponse(v checkoutsvc.View) checkoutResponse {
	snap := v.Snapshot
	resp := checkoutResponse{
		ID:          v.ID,
		BuyerID:     v.BuyerID,
		ContentID:   snap.ContentID,
		Stage:       snap.Stage,
		Page:        snap.Page,
		Method:      snap.Method,
		Vendor:      snap.Vendor,
		ExtraPreset: snap.ExtraPreset,
		Summary: summaryResponse{
			BasePrice:   toMoney(snap.Summary.BasePriceCents),
			ExtraAmount: toMoney(snap.Summary.ExtraAmountCents),
			TotalPrice:  toMoney(snap.Summary.TotalPriceCents),
			BalanceUsed: toMoney(snap.Summary.BalanceUsedCents),
			AmountDue:   toMoney(snap.Summary.AmountDueCents),
			Provisional: snap.Summary.Provisional,
		},
		Methods:                   snap.Gate,
		Error:                     snap.Error,
		TransferAcknowledged:      snap.TransferAcknowledged,
		HasStandaloneTransferPage: snap.HasStandaloneTransferPage,
		Submittable:               v.Submittable,
		CanClose:                  snap.Stage != domain.StageUnlocking,
	}
	// Unknown balances render as null.
	if snap.Balance.Known {
		b := toMoney(snap.Balance.Cents)
		resp.Balance = &b
	}
	return resp
}

type contentResponse struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Price    money  `json:"price"`
	Currency string `json:"currency"`
}

func toContentResponse(c domain.Content) contentResponse {
	return contentResponse{
		ID:       c.ID,
		Key:      c.Key,
		Title:    c.Title,
		Price:    toMoney(c.PriceCents),
		Currency: c.Currency,
	}
}

type purchaseResponse struct {
	ID          string                `json:"id"`
	ContentID   string                `json:"contentId"`
	Method      domain.PurchaseMethod `json:"method"`
	Vendor      domain.PurchaseVendor `json:"vendor,omitempty"`
	Total       money                 `json:"total"`
	ExtraAmount money                 `json:"extraAmount"`
	BalanceUsed money                 `json:"balanceUsed"`
	AmountDue   money                 `json:"amountDue"`
	Status      string                `json:"status"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func toPurchaseResponse(p domain.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:          p.ID,
		ContentID:   p.ContentID,
		Method:      p.Method,
		Vendor:      p.Vendor,
		Total:       toMoney(p.TotalCents),
		ExtraAmount: toMoney(p.ExtraAmountCents),
		BalanceUsed: toMoney(p.BalanceUsedCents),
		AmountDue:   toMoney(p.AmountDueCents),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
