package checkout

import "contentcheckout/internal/domain"

// Calculate derives the purchase summary from the base price, the extra amount
// chosen by the buyer and the current balance. An unknown balance counts as zero
// and marks the summary provisional. Negative inputs are clamped to zero.
func Calculate(basePriceCents, extraAmountCents int64, balance domain.Balance) domain.PurchaseSummary {
	basePriceCents = max(basePriceCents, 0)
	extraAmountCents = max(extraAmountCents, 0)
	total := basePriceCents + extraAmountCents

	var available int64
	if balance.Known {
		available = max(balance.Cents, 0)
	}
	used := min(total, available)

	return domain.PurchaseSummary{
		BasePriceCents:   basePriceCents,
		ExtraAmountCents: extraAmountCents,
		TotalPriceCents:  total,
		BalanceUsedCents: used,
		AmountDueCents:   total - used,
		Provisional:      !balance.Known,
	}
}

// TopUpCents is the amount a top-up has to collect to cover the summary. Top-ups
// below minTopUpCents are raised to the minimum.
func TopUpCents(s domain.PurchaseSummary, minTopUpCents int64) int64 {
	if s.AmountDueCents <= 0 {
		return 0
	}
	return max(s.AmountDueCents, minTopUpCents)
}

// ExtraPresets are the "pay extra" amounts offered next to a custom value.
type ExtraPresets struct {
	LowCents    int64
	MediumCents int64
	HighCents   int64
}

// Amount resolves a preset to cents. Custom amounts must be non-negative and, when
// maxCents is positive, not above it.
func (p ExtraPresets) Amount(preset domain.PayExtraPreset, customCents, maxCents int64) (int64, error) {
	switch preset {
	case "", domain.PayExtraNone:
		return 0, nil
	case domain.PayExtraLow:
		return p.LowCents, nil
	case domain.PayExtraMedium:
		return p.MediumCents, nil
	case domain.PayExtraHigh:
		return p.HighCents, nil
	case domain.PayExtraCustom:
		if customCents < 0 || (maxCents > 0 && customCents > maxCents) {
			return 0, ErrInvalidExtraAmount
		}
		return customCents, nil
	default:
		return 0, ErrInvalidExtraAmount
	}
}
