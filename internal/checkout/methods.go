package checkout

import "contentcheckout/internal/domain"

// GateInputs are the values method availability depends on.
type GateInputs struct {
	Summary                 domain.PurchaseSummary
	Balance                 domain.Balance
	PlatformAllowsCard      bool
	ShowExistingBalance     bool
	ExistingBalanceDisabled bool
}

// PlatformAllowsCard reports whether in-app card purchases are offered on p.
// iOS builds only allow them behind a flag.
func PlatformAllowsCard(p domain.Platform, iosCardPurchaseEnabled bool) bool {
	return p != domain.PlatformIOS || iosCardPurchaseEnabled
}

// DefaultMethod is card, or crypto where card purchases are not allowed.
func DefaultMethod(platformAllowsCard bool) domain.PurchaseMethod {
	if platformAllowsCard {
		return domain.MethodCard
	}
	return domain.MethodCrypto
}

// GateMethods computes which payment methods can be picked.
func GateMethods(in GateInputs) domain.MethodGate {
	var gate domain.MethodGate

	if in.ShowExistingBalance && in.Balance.Known && in.Balance.Cents > 0 {
		disabled := in.ExistingBalanceDisabled || in.Balance.Cents < in.Summary.TotalPriceCents
		gate.Balance = domain.MethodState{Shown: true, Selectable: !disabled, Disabled: disabled}
	}

	gate.Card = domain.MethodState{
		Shown:      true,
		Selectable: in.PlatformAllowsCard,
		Disabled:   !in.PlatformAllowsCard,
	}
	gate.Crypto = domain.MethodState{Shown: true, Selectable: true}
	gate.Default = DefaultMethod(in.PlatformAllowsCard)
	return gate
}
