package funds

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentcheckout/internal/domain"
	purchaserepo "contentcheckout/internal/repository/purchase"
)

type stubRepo struct {
	last  purchaserepo.RecordInput
	calls int
	err   error
}

func (s *stubRepo) Record(_ context.Context, in purchaserepo.RecordInput) (*domain.Purchase, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Purchase{
		ID:        in.ID,
		BuyerID:   in.BuyerID,
		ContentID: in.ContentID,
		Method:    in.Method,
		Status:    in.Status,
	}, nil
}

func newService(repo *stubRepo) *Service {
	svc := New(repo, nil)
	svc.newID = func() string { return "p1" }
	return svc
}

func paidFromBalance() domain.PurchaseSummary {
	return domain.PurchaseSummary{BasePriceCents: 500, TotalPriceCents: 500, BalanceUsedCents: 500}
}

func TestSubmit_BalanceCompletes(t *testing.T) {
	repo := &stubRepo{}
	err := newService(repo).Submit(context.Background(), domain.FundsRequest{
		BuyerID: "b1", ContentID: "c1", Method: domain.MethodBalance, Summary: paidFromBalance(),
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", repo.last.ID)
	assert.Equal(t, domain.PurchaseStatusCompleted, repo.last.Status)
	assert.Empty(t, repo.last.Vendor)
}

func TestSubmit_CardPendingWithVendor(t *testing.T) {
	repo := &stubRepo{}
	err := newService(repo).Submit(context.Background(), domain.FundsRequest{
		BuyerID: "b1", ContentID: "c1", Method: domain.MethodCard, Vendor: domain.VendorAlternate,
		Summary:        domain.PurchaseSummary{BasePriceCents: 500, TotalPriceCents: 500, AmountDueCents: 500},
		AmountDueCents: 500, TopUpCents: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusPending, repo.last.Status)
	assert.Equal(t, domain.VendorAlternate, repo.last.Vendor)
}

func TestSubmit_CardWithoutVendorRejected(t *testing.T) {
	repo := &stubRepo{}
	err := newService(repo).Submit(context.Background(), domain.FundsRequest{Method: domain.MethodCard})

	var pe *domain.PurchaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ErrCodeVendorRejected, pe.Code)
	assert.Zero(t, repo.calls)
}

func TestSubmit_AmountDueNotCoveredByBalance(t *testing.T) {
	repo := &stubRepo{}
	err := newService(repo).Submit(context.Background(), domain.FundsRequest{
		Method: domain.MethodCrypto, AmountDueCents: 100,
	})

	var pe *domain.PurchaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ErrCodeInsufficientFunds, pe.Code)
	assert.Zero(t, repo.calls)
}

func TestSubmit_ClassifiesRepositoryErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.PurchaseErrorCode
	}{
		{"insufficient balance", fmt.Errorf("record: %w", purchaserepo.ErrInsufficientBalance), domain.ErrCodeInsufficientFunds},
		{"cancelled", context.Canceled, domain.ErrCodeCancelled},
		{"timeout", context.DeadlineExceeded, domain.ErrCodeNetworkFailure},
		{"classified", domain.NewPurchaseError(domain.ErrCodeVendorRejected, "declined"), domain.ErrCodeVendorRejected},
		{"other", errors.New("boom"), domain.ErrCodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubRepo{err: tc.err}
			err := newService(repo).Submit(context.Background(), domain.FundsRequest{
				Method: domain.MethodBalance, Summary: paidFromBalance(),
			})
			var pe *domain.PurchaseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.want, pe.Code)
		})
	}
}

func TestSubmit_RepositoryErrorTextStaysInternal(t *testing.T) {
	repo := &stubRepo{err: fmt.Errorf("record purchase: %w", errors.New(`pq: relation "purchases" does not exist`))}
	err := newService(repo).Submit(context.Background(), domain.FundsRequest{
		Method: domain.MethodBalance, Summary: paidFromBalance(),
	})
	var pe *domain.PurchaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ErrCodeUnknown, pe.Code)
	assert.Equal(t, domain.PurchaseErrorFor(domain.ErrCodeUnknown).Message, pe.Message)
	assert.NotContains(t, pe.Error(), "relation")
}
