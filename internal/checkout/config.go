package checkout

// Remote config keys read by the checkout.
const (
	FlagAlternateProcessorEnabled = "alternate_processor_enabled"
	FlagIOSCardPurchaseEnabled    = "ios_card_purchase_enabled"
	FlagExistingBalanceDisabled   = "existing_balance_disabled"

	IntAlternateProcessorMaxCents = "alternate_processor_max_cents"
	IntMinTopUpCents              = "min_top_up_cents"
	IntPayExtraLowCents           = "pay_extra_low_cents"
	IntPayExtraMediumCents        = "pay_extra_medium_cents"
	IntPayExtraHighCents          = "pay_extra_high_cents"
	IntMaxExtraAmountCents        = "max_extra_amount_cents"
)

// RemoteConfig exposes feature toggles and numeric settings. Implementations
// must answer from memory; the machine reads them on every recomputation.
type RemoteConfig interface {
	GetFlag(name string) bool
	GetInt(name string) int64
}

// StaticConfig is a RemoteConfig backed by fixed maps.
type StaticConfig struct {
	Flags map[string]bool
	Ints  map[string]int64
}

func (c StaticConfig) GetFlag(name string) bool {
	return c.Flags[name]
}

func (c StaticConfig) GetInt(name string) int64 {
	return c.Ints[name]
}

type settings struct {
	alternateEnabled        bool
	alternateMaxCents       int64
	iosCardEnabled          bool
	existingBalanceDisabled bool
	minTopUpCents           int64
	presets                 ExtraPresets
	maxExtraCents           int64
}

func readSettings(rc RemoteConfig) settings {
	return settings{
		alternateEnabled:        rc.GetFlag(FlagAlternateProcessorEnabled),
		alternateMaxCents:       rc.GetInt(IntAlternateProcessorMaxCents),
		iosCardEnabled:          rc.GetFlag(FlagIOSCardPurchaseEnabled),
		existingBalanceDisabled: rc.GetFlag(FlagExistingBalanceDisabled),
		minTopUpCents:           rc.GetInt(IntMinTopUpCents),
		presets: ExtraPresets{
			LowCents:    rc.GetInt(IntPayExtraLowCents),
			MediumCents: rc.GetInt(IntPayExtraMediumCents),
			HighCents:   rc.GetInt(IntPayExtraHighCents),
		},
		maxExtraCents: rc.GetInt(IntMaxExtraAmountCents),
	}
}
