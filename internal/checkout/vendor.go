package checkout

import "contentcheckout/internal/domain"

// VendorInputs are the values the vendor decision depends on.
type VendorInputs struct {
	TotalPriceCents            int64
	AlternateProcessorEnabled  bool
	AlternateProcessorMaxCents int64
	PlatformAllowsCard         bool
}

// AlternateEligible reports whether the alternate processor may take a payment of totalCents.
func AlternateEligible(totalCents int64, enabled bool, maxCents int64) bool {
	return enabled && totalCents <= maxCents
}

// VendorResolver picks the card vendor. It keeps the buyer's preference and the
// last resolved vendor so that a vendor which stops being eligible is reset.
type VendorResolver struct {
	preferred *domain.PurchaseVendor
	current   domain.PurchaseVendor
}

func NewVendorResolver() *VendorResolver {
	return &VendorResolver{current: domain.VendorPrimary}
}

// Prefer records the buyer's vendor choice. It is applied on the next Resolve.
func (r *VendorResolver) Prefer(v domain.PurchaseVendor) {
	r.preferred = &v
}

// Preference returns the buyer's vendor choice, nil when none was made.
func (r *VendorResolver) Preference() *domain.PurchaseVendor {
	return r.preferred
}

// Current returns the vendor picked by the last Resolve.
func (r *VendorResolver) Current() domain.PurchaseVendor {
	return r.current
}

// Resolve recomputes the vendor. The alternate processor is the default whenever
// it is eligible. When it is not, the result is the primary processor and an
// alternate preference is dropped.
func (r *VendorResolver) Resolve(in VendorInputs) domain.PurchaseVendor {
	eligible := in.PlatformAllowsCard &&
		AlternateEligible(in.TotalPriceCents, in.AlternateProcessorEnabled, in.AlternateProcessorMaxCents)

	switch {
	case !eligible:
		if r.preferred != nil && *r.preferred == domain.VendorAlternate {
			r.preferred = nil
		}
		r.current = domain.VendorPrimary
	case r.preferred != nil:
		r.current = *r.preferred
	default:
		r.current = domain.VendorAlternate
	}
	return r.current
}
