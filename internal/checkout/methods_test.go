package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contentcheckout/internal/domain"
)

func TestPlatformAllowsCard(t *testing.T) {
	assert.True(t, PlatformAllowsCard(domain.PlatformOther, false))
	assert.False(t, PlatformAllowsCard(domain.PlatformIOS, false))
	assert.True(t, PlatformAllowsCard(domain.PlatformIOS, true))
}

func TestGateMethods(t *testing.T) {
	summary := Calculate(500, 0, domain.KnownBalance(800))

	tests := []struct {
		name        string
		in          GateInputs
		wantBalance domain.MethodState
		wantCard    domain.MethodState
		wantDefault domain.PurchaseMethod
	}{
		{
			name:        "balance covers total",
			in:          GateInputs{Summary: summary, Balance: domain.KnownBalance(800), PlatformAllowsCard: true, ShowExistingBalance: true},
			wantBalance: domain.MethodState{Shown: true, Selectable: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "balance too small",
			in:          GateInputs{Summary: Calculate(500, 0, domain.KnownBalance(100)), Balance: domain.KnownBalance(100), PlatformAllowsCard: true, ShowExistingBalance: true},
			wantBalance: domain.MethodState{Shown: true, Disabled: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "policy disables balance",
			in:          GateInputs{Summary: summary, Balance: domain.KnownBalance(800), PlatformAllowsCard: true, ShowExistingBalance: true, ExistingBalanceDisabled: true},
			wantBalance: domain.MethodState{Shown: true, Disabled: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "zero balance hidden",
			in:          GateInputs{Summary: summary, Balance: domain.KnownBalance(0), PlatformAllowsCard: true, ShowExistingBalance: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "unknown balance hidden",
			in:          GateInputs{Summary: summary, Balance: domain.UnknownBalance(), PlatformAllowsCard: true, ShowExistingBalance: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "existing balance not offered",
			in:          GateInputs{Summary: summary, Balance: domain.KnownBalance(800), PlatformAllowsCard: true},
			wantCard:    domain.MethodState{Shown: true, Selectable: true},
			wantDefault: domain.MethodCard,
		},
		{
			name:        "card not allowed",
			in:          GateInputs{Summary: summary, Balance: domain.KnownBalance(0)},
			wantCard:    domain.MethodState{Shown: true, Disabled: true},
			wantDefault: domain.MethodCrypto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := GateMethods(tt.in)
			assert.Equal(t, tt.wantBalance, gate.Balance)
			assert.Equal(t, tt.wantCard, gate.Card)
			assert.Equal(t, domain.MethodState{Shown: true, Selectable: true}, gate.Crypto)
			assert.Equal(t, tt.wantDefault, gate.Default)
		})
	}
}
