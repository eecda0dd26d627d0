// Package checkout holds the purchase checkout state machine and the pure
// computations it is built on.
package checkout

import (
	"contentcheckout/internal/domain"
)

// Options configure a checkout flow.
type Options struct {
	ContentID           string
	Conditions          domain.PurchaseConditions
	Platform            domain.Platform
	ShowExistingBalance bool
	// HasStandaloneTransferPage selects the flow where crypto transfers get
	// their own page. Without it the transfer is embedded in the purchase page.
	HasStandaloneTransferPage bool
	// Balance is the last balance observed before the checkout opened.
	Balance domain.Balance
}

// Snapshot is the read-only view of a checkout.
type Snapshot struct {
	ContentID                 string                 `json:"contentId"`
	Stage                     domain.Stage           `json:"stage"`
	Page                      domain.Page            `json:"page"`
	Method                    domain.PurchaseMethod  `json:"method"`
	Vendor                    domain.PurchaseVendor  `json:"vendor"`
	Summary                   domain.PurchaseSummary `json:"summary"`
	Gate                      domain.MethodGate      `json:"methods"`
	Error                     *domain.PurchaseError  `json:"error,omitempty"`
	Balance                   domain.Balance         `json:"balance"`
	ExtraPreset               domain.PayExtraPreset  `json:"extraPreset"`
	TransferAcknowledged      bool                   `json:"transferAcknowledged"`
	HasStandaloneTransferPage bool                   `json:"hasStandaloneTransferPage"`
	Closed                    bool                   `json:"closed"`
}

// Submission is what gets handed to funds movement when the buyer submits.
type Submission struct {
	Attempt   int64
	ContentID string
	Method    domain.PurchaseMethod
	// Vendor is only set for card payments.
	Vendor         domain.PurchaseVendor
	Summary        domain.PurchaseSummary
	AmountDueCents int64
	TopUpCents     int64
}

// Machine is the checkout state machine. It is not safe for concurrent use:
// callers deliver every event from a single goroutine.
type Machine struct {
	opts   Options
	remote RemoteConfig

	balance     domain.Balance
	stage       domain.Stage
	page        domain.Page
	method      domain.PurchaseMethod
	vendor      *VendorResolver
	preset      domain.PayExtraPreset
	extraCents  int64
	summary     domain.PurchaseSummary
	gate        domain.MethodGate
	transferAck bool
	err         *domain.PurchaseError
	attempt     int64
	closed      bool
}

// NewMachine opens a checkout in the start stage.
func NewMachine(opts Options, remote RemoteConfig) *Machine {
	m := &Machine{opts: opts, remote: remote, balance: opts.Balance}
	m.init()
	return m
}

func (m *Machine) init() {
	m.stage = domain.StageStart
	m.page = domain.PagePurchase
	m.vendor = NewVendorResolver()
	m.preset = domain.PayExtraNone
	m.extraCents = 0
	m.transferAck = false
	m.err = nil

	s := readSettings(m.remote)
	m.method = DefaultMethod(PlatformAllowsCard(m.opts.Platform, s.iosCardEnabled))
	m.recompute()
}

// recompute rebuilds every derived value from the current inputs.
func (m *Machine) recompute() {
	s := readSettings(m.remote)
	allowsCard := PlatformAllowsCard(m.opts.Platform, s.iosCardEnabled)

	m.summary = Calculate(m.opts.Conditions.PriceCents, m.extraCents, m.balance)
	m.gate = GateMethods(GateInputs{
		Summary:                 m.summary,
		Balance:                 m.balance,
		PlatformAllowsCard:      allowsCard,
		ShowExistingBalance:     m.opts.ShowExistingBalance,
		ExistingBalanceDisabled: s.existingBalanceDisabled,
	})
	m.vendor.Resolve(VendorInputs{
		TotalPriceCents:            m.summary.TotalPriceCents,
		AlternateProcessorEnabled:  s.alternateEnabled,
		AlternateProcessorMaxCents: s.alternateMaxCents,
		PlatformAllowsCard:         allowsCard,
	})

	if !m.gate.State(m.method).Selectable {
		m.setMethod(m.gate.Default)
	}
}

func (m *Machine) setMethod(method domain.PurchaseMethod) {
	if method == m.method {
		return
	}
	m.method = method
	m.transferAck = false
	m.page = domain.PagePurchase
}

func (m *Machine) editable() error {
	if m.closed {
		return ErrSessionClosed
	}
	if !m.stage.Editable() {
		return ErrInvalidTransition
	}
	return nil
}

// Refresh re-reads remote settings and rebuilds the derived state. A changed
// flag can force the vendor back to primary or drop a method that is no longer
// selectable. It does nothing once a submission is in flight.
func (m *Machine) Refresh() {
	if m.closed || !m.stage.Editable() {
		return
	}
	m.recompute()
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		ContentID:                 m.opts.ContentID,
		Stage:                     m.stage,
		Page:                      m.page,
		Method:                    m.method,
		Vendor:                    m.vendor.Current(),
		Summary:                   m.summary,
		Gate:                      m.gate,
		Error:                     m.err,
		Balance:                   m.balance,
		ExtraPreset:               m.preset,
		TransferAcknowledged:      m.transferAck,
		HasStandaloneTransferPage: m.opts.HasStandaloneTransferPage,
		Closed:                    m.closed,
	}
}

// ContentID returns the content being bought.
func (m *Machine) ContentID() string {
	return m.opts.ContentID
}

// SelectMethod picks a payment method. Selecting the current method is a no-op.
func (m *Machine) SelectMethod(method domain.PurchaseMethod) error {
	if err := m.editable(); err != nil {
		return err
	}
	if !method.Valid() || !m.gate.State(method).Selectable {
		return ErrMethodUnavailable
	}
	m.setMethod(method)
	return nil
}

// Continue moves a crypto checkout to the standalone transfer page.
func (m *Machine) Continue() error {
	if err := m.editable(); err != nil {
		return err
	}
	if m.method != domain.MethodCrypto || !m.opts.HasStandaloneTransferPage {
		return ErrInvalidTransition
	}
	m.page = domain.PageTransfer
	return nil
}

// CompleteTransfer acknowledges the crypto transfer step and returns to the
// purchase page.
func (m *Machine) CompleteTransfer() error {
	if err := m.editable(); err != nil {
		return err
	}
	if m.method != domain.MethodCrypto {
		return ErrInvalidTransition
	}
	if m.opts.HasStandaloneTransferPage && m.page != domain.PageTransfer {
		return ErrInvalidTransition
	}
	m.transferAck = true
	m.page = domain.PagePurchase
	return nil
}

// GoBack leaves the transfer page. It does nothing on the purchase page.
func (m *Machine) GoBack() error {
	if m.closed {
		return ErrSessionClosed
	}
	if m.stage == domain.StageUnlocking {
		return ErrInvalidTransition
	}
	m.page = domain.PagePurchase
	return nil
}

// SetExtraAmount applies a "pay extra" choice and recomputes the checkout.
func (m *Machine) SetExtraAmount(preset domain.PayExtraPreset, customCents int64) error {
	if err := m.editable(); err != nil {
		return err
	}
	s := readSettings(m.remote)
	cents, err := s.presets.Amount(preset, customCents, s.maxExtraCents)
	if err != nil {
		return err
	}
	if preset == "" {
		preset = domain.PayExtraNone
	}
	m.preset = preset
	m.extraCents = cents
	m.recompute()
	return nil
}

// SetVendorPreference records the buyer's card vendor choice. The resolver may
// still override it.
func (m *Machine) SetVendorPreference(v domain.PurchaseVendor) error {
	if err := m.editable(); err != nil {
		return err
	}
	if !v.Valid() {
		return ErrInvalidVendor
	}
	m.vendor.Prefer(v)
	m.recompute()
	return nil
}

// Submittable reports whether Submit would be accepted.
func (m *Machine) Submittable() bool {
	return m.checkSubmit() == nil
}

func (m *Machine) checkSubmit() error {
	if err := m.editable(); err != nil {
		return err
	}
	if !m.gate.State(m.method).Selectable {
		return ErrMethodUnavailable
	}
	switch m.method {
	case domain.MethodCard:
		return nil
	case domain.MethodCrypto:
		if !m.transferAck {
			return ErrNotSubmittable
		}
	}
	// Balance and crypto purchases settle from the balance, which must cover
	// the whole total.
	if !m.balance.Known || m.summary.AmountDueCents > 0 {
		return ErrNotSubmittable
	}
	return nil
}

// Submit moves the checkout to the unlocking stage and freezes the summary for
// the returned submission.
func (m *Machine) Submit() (Submission, error) {
	chosen := m.method
	m.Refresh()
	if m.method != chosen {
		// The chosen method was withdrawn; the buyer has to confirm the fallback.
		return Submission{}, ErrMethodUnavailable
	}
	if err := m.checkSubmit(); err != nil {
		return Submission{}, err
	}
	s := readSettings(m.remote)
	m.attempt++
	m.stage = domain.StageUnlocking
	m.page = domain.PagePurchase
	m.err = nil

	sub := Submission{
		Attempt:        m.attempt,
		ContentID:      m.opts.ContentID,
		Method:         m.method,
		Summary:        m.summary,
		AmountDueCents: m.summary.AmountDueCents,
	}
	if m.method == domain.MethodCard {
		sub.Vendor = m.vendor.Current()
		sub.TopUpCents = TopUpCents(m.summary, s.minTopUpCents)
	}
	return sub, nil
}

// OnExternalResult records the outcome of a submission. Results for other
// attempts, or arriving outside the unlocking stage, are ignored and false is
// returned.
func (m *Machine) OnExternalResult(attempt int64, err error) bool {
	if m.closed || m.stage != domain.StageUnlocking || attempt != m.attempt {
		return false
	}
	if err == nil {
		m.stage = domain.StageSuccess
		return true
	}
	m.stage = domain.StageError
	m.err = domain.AsPurchaseError(err)
	m.recompute()
	return true
}

// OnBalance stores a new balance observation. The summary of an in-flight or
// completed submission is left untouched.
func (m *Machine) OnBalance(b domain.Balance) {
	if m.closed {
		return
	}
	m.balance = b
	if m.stage.Editable() {
		m.recompute()
	}
}

// ResetForTarget discards the checkout and starts over for another content
// item. A reset to the current content is a no-op. A submission in flight is
// disconnected: its result will be ignored.
func (m *Machine) ResetForTarget(contentID string, conditions domain.PurchaseConditions) error {
	if m.closed {
		return ErrSessionClosed
	}
	if contentID == m.opts.ContentID {
		return nil
	}
	m.opts.ContentID = contentID
	m.opts.Conditions = conditions
	m.attempt++
	m.init()
	return nil
}

// Cleanup tears the checkout down. It is refused while a submission is in flight.
func (m *Machine) Cleanup() error {
	if m.closed {
		return nil
	}
	if m.stage == domain.StageUnlocking {
		return ErrCloseBlocked
	}
	m.closed = true
	m.attempt++
	m.stage = domain.StageStart
	m.page = domain.PagePurchase
	m.method = ""
	m.preset = domain.PayExtraNone
	m.extraCents = 0
	m.summary = domain.PurchaseSummary{}
	m.gate = domain.MethodGate{}
	m.vendor = NewVendorResolver()
	m.transferAck = false
	m.err = nil
	return nil
}

// Closed reports whether Cleanup succeeded.
func (m *Machine) Closed() bool {
	return m.closed
}
