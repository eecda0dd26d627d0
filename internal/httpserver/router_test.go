package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	core "contentcheckout/internal/checkout"
	"contentcheckout/internal/domain"
	buyersvc "contentcheckout/internal/service/buyer"
	checkoutsvc "contentcheckout/internal/service/checkout"
)

func logDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubCheckoutService struct {
	view       checkoutsvc.View
	err        error
	closeErr   error
	lastOpen   checkoutsvc.OpenInput
	lastID     string
	lastMethod domain.PurchaseMethod
	lastPreset domain.PayExtraPreset
	lastCustom int64
	lastVendor domain.PurchaseVendor
	lastTarget string
	calls      []string
}

func (s *stubCheckoutService) record(name, id string) (checkoutsvc.View, error) {
	s.calls = append(s.calls, name)
	s.lastID = id
	return s.view, s.err
}

func (s *stubCheckoutService) Open(_ context.Context, in checkoutsvc.OpenInput) (checkoutsvc.View, error) {
	s.lastOpen = in
	return s.record("open", "")
}

func (s *stubCheckoutService) Get(_ context.Context, id string) (checkoutsvc.View, error) {
	return s.record("get", id)
}

func (s *stubCheckoutService) SelectMethod(_ context.Context, id string, m domain.PurchaseMethod) (checkoutsvc.View, error) {
	s.lastMethod = m
	return s.record("method", id)
}

func (s *stubCheckoutService) SetExtraAmount(_ context.Context, id string, p domain.PayExtraPreset, custom int64) (checkoutsvc.View, error) {
	s.lastPreset = p
	s.lastCustom = custom
	return s.record("extra", id)
}

func (s *stubCheckoutService) SetVendorPreference(_ context.Context, id string, v domain.PurchaseVendor) (checkoutsvc.View, error) {
	s.lastVendor = v
	return s.record("vendor", id)
}

func (s *stubCheckoutService) Continue(_ context.Context, id string) (checkoutsvc.View, error) {
	return s.record("continue", id)
}

func (s *stubCheckoutService) CompleteTransfer(_ context.Context, id string) (checkoutsvc.View, error) {
	return s.record("transfer", id)
}

func (s *stubCheckoutService) GoBack(_ context.Context, id string) (checkoutsvc.View, error) {
	return s.record("back", id)
}

func (s *stubCheckoutService) Submit(_ context.Context, id string) (checkoutsvc.View, error) {
	return s.record("submit", id)
}

func (s *stubCheckoutService) ChangeTarget(_ context.Context, id, contentID string) (checkoutsvc.View, error) {
	s.lastTarget = contentID
	return s.record("target", id)
}

func (s *stubCheckoutService) Close(_ context.Context, id string) error {
	s.calls = append(s.calls, "close")
	s.lastID = id
	return s.closeErr
}

type stubContentService struct {
	items []domain.Content
	err   error
}

func (s *stubContentService) List(context.Context) ([]domain.Content, error) {
	return s.items, s.err
}

func (s *stubContentService) Get(_ context.Context, id string) (*domain.Content, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.items {
		if c.ID == id || c.Key == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubBuyerService struct {
	balances  map[string]int64
	purchases []domain.Purchase
}

func (s *stubBuyerService) Balance(_ context.Context, buyerID string) (domain.Balance, error) {
	return domain.KnownBalance(s.balances[buyerID]), nil
}

func (s *stubBuyerService) Credit(_ context.Context, buyerID string, cents int64) (domain.Balance, error) {
	if cents <= 0 {
		return domain.Balance{}, buyersvc.ErrInvalidCredit
	}
	if s.balances == nil {
		s.balances = map[string]int64{}
	}
	s.balances[buyerID] += cents
	return domain.KnownBalance(s.balances[buyerID]), nil
}

func (s *stubBuyerService) Purchases(context.Context, string) ([]domain.Purchase, error) {
	return s.purchases, nil
}

func sampleView() checkoutsvc.View {
	return checkoutsvc.View{
		ID:      "s1",
		BuyerID: "b1",
		Snapshot: core.Snapshot{
			ContentID: "c1",
			Stage:     domain.StageStart,
			Page:      domain.PagePurchase,
			Method:    domain.MethodCard,
			Vendor:    domain.VendorAlternate,
			Summary: domain.PurchaseSummary{
				BasePriceCents:   500,
				TotalPriceCents:  500,
				BalanceUsedCents: 200,
				AmountDueCents:   300,
			},
			Balance: domain.KnownBalance(200),
		},
		Submittable: true,
	}
}

func newTestRouter(t *testing.T, svc *stubCheckoutService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		CheckoutSvc: svc,
		ContentSvc: &stubContentService{items: []domain.Content{
			{ID: "c1", Key: "track-a", Title: "Track A", PriceCents: 199, Currency: "USD"},
		}},
		BuyerSvc: &stubBuyerService{
			balances:  map[string]int64{"b1": 1234},
			purchases: []domain.Purchase{{ID: "p1", ContentID: "c1", Method: domain.MethodBalance, TotalCents: 500, Status: domain.PurchaseStatusCompleted}},
		},
	}, []string{"http://localhost:3000"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}, nil); err == nil {
		t.Fatalf("expected error without services")
	}
}

func TestOpenCheckout_Created(t *testing.T) {
	svc := &stubCheckoutService{view: sampleView()}
	router := newTestRouter(t, svc)

	rec := do(router, http.MethodPost, "/checkouts", `{"buyerId":"b1","contentId":"c1","platform":"ios"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.lastOpen.BuyerID != "b1" || svc.lastOpen.Platform != "ios" || !svc.lastOpen.ShowExistingBalance {
		t.Fatalf("unexpected open input %+v", svc.lastOpen)
	}
	var body checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.AmountDue.Amount != "3.00" || body.Summary.AmountDue.CentAmount != 300 {
		t.Fatalf("unexpected amount due %+v", body.Summary.AmountDue)
	}
	if body.Balance == nil || body.Balance.Amount != "2.00" {
		t.Fatalf("unexpected balance %+v", body.Balance)
	}
	if !body.CanClose || !body.Submittable {
		t.Fatalf("expected closable and submittable checkout: %s", rec.Body.String())
	}
}

func TestOpenCheckout_Conflict(t *testing.T) {
	svc := &stubCheckoutService{err: domain.ErrSessionExists}
	router := newTestRouter(t, svc)

	rec := do(router, http.MethodPost, "/checkouts", `{"buyerId":"b1","contentId":"c1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestOpenCheckout_InvalidBody(t *testing.T) {
	router := newTestRouter(t, &stubCheckoutService{})
	rec := do(router, http.MethodPost, "/checkouts", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCheckout_UnknownBalanceIsNull(t *testing.T) {
	view := sampleView()
	view.Snapshot.Balance = domain.UnknownBalance()
	svc := &stubCheckoutService{view: view}
	router := newTestRouter(t, svc)

	rec := do(router, http.MethodGet, "/checkouts/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastID != "s1" {
		t.Fatalf("expected id s1, got %q", svc.lastID)
	}
	if !strings.Contains(rec.Body.String(), `"balance":null`) {
		t.Fatalf("expected null balance: %s", rec.Body.String())
	}
}

func TestCheckoutIntents(t *testing.T) {
	cases := []struct {
		method string
		path   string
		body   string
		call   string
	}{
		{http.MethodPost, "/checkouts/s1/method", `{"method":"CRYPTO"}`, "method"},
		{http.MethodPost, "/checkouts/s1/extra", `{"preset":"custom","customCents":250}`, "extra"},
		{http.MethodPost, "/checkouts/s1/vendor", `{"vendor":"primary"}`, "vendor"},
		{http.MethodPost, "/checkouts/s1/continue", "", "continue"},
		{http.MethodPost, "/checkouts/s1/transfer/complete", "", "transfer"},
		{http.MethodPost, "/checkouts/s1/back", "", "back"},
		{http.MethodPost, "/checkouts/s1/submit", "", "submit"},
		{http.MethodPut, "/checkouts/s1/target", `{"contentId":"c2"}`, "target"},
	}
	for _, tc := range cases {
		t.Run(tc.call, func(t *testing.T) {
			svc := &stubCheckoutService{view: sampleView()}
			router := newTestRouter(t, svc)

			rec := do(router, tc.method, tc.path, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
			}
			if len(svc.calls) != 1 || svc.calls[0] != tc.call || svc.lastID != "s1" {
				t.Fatalf("unexpected calls %v id=%q", svc.calls, svc.lastID)
			}
		})
	}
}

func TestCheckoutIntents_DecodeArguments(t *testing.T) {
	svc := &stubCheckoutService{view: sampleView()}
	router := newTestRouter(t, svc)

	do(router, http.MethodPost, "/checkouts/s1/method", `{"method":"CRYPTO"}`)
	do(router, http.MethodPost, "/checkouts/s1/extra", `{"preset":"Custom","customCents":250}`)
	do(router, http.MethodPost, "/checkouts/s1/vendor", `{"vendor":"alternate"}`)
	do(router, http.MethodPut, "/checkouts/s1/target", `{"contentId":"c2"}`)

	if svc.lastMethod != domain.MethodCrypto {
		t.Fatalf("unexpected method %q", svc.lastMethod)
	}
	if svc.lastPreset != domain.PayExtraCustom || svc.lastCustom != 250 {
		t.Fatalf("unexpected extra %q %d", svc.lastPreset, svc.lastCustom)
	}
	if svc.lastVendor != domain.VendorAlternate {
		t.Fatalf("unexpected vendor %q", svc.lastVendor)
	}
	if svc.lastTarget != "c2" {
		t.Fatalf("unexpected target %q", svc.lastTarget)
	}
}

func TestSelectMethod_UnknownMethod(t *testing.T) {
	svc := &stubCheckoutService{view: sampleView()}
	router := newTestRouter(t, svc)

	rec := do(router, http.MethodPost, "/checkouts/s1/method", `{"method":"cash"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{core.ErrInvalidTransition, http.StatusConflict},
		{core.ErrNotSubmittable, http.StatusConflict},
		{core.ErrMethodUnavailable, http.StatusConflict},
		{core.ErrInvalidExtraAmount, http.StatusBadRequest},
		{core.ErrInvalidVendor, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			router := newTestRouter(t, &stubCheckoutService{err: tc.err})
			rec := do(router, http.MethodPost, "/checkouts/s1/submit", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestCloseCheckout(t *testing.T) {
	svc := &stubCheckoutService{}
	router := newTestRouter(t, svc)

	rec := do(router, http.MethodDelete, "/checkouts/s1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	svc.closeErr = core.ErrCloseBlocked
	rec = do(router, http.MethodDelete, "/checkouts/s1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while unlocking, got %d", rec.Code)
	}
}

func TestContents(t *testing.T) {
	router := newTestRouter(t, &stubCheckoutService{})

	rec := do(router, http.MethodGet, "/contents", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"amount":"1.99"`) {
		t.Fatalf("unexpected list response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/contents/track-a", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"c1"`) {
		t.Fatalf("unexpected get response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/contents/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, &stubCheckoutService{})

	if rec := do(router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from readyz without db, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "content_checkout_http_requests_total") {
		t.Fatalf("unexpected metrics response %d", rec.Code)
	}
}

type stubConfigStatus struct{ loaded bool }

func (s stubConfigStatus) Loaded() bool { return s.loaded }

func TestReadyz_WaitsForRemoteConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		loaded bool
		reason string
	}{
		{"not loaded", false, "remote config not loaded"},
		{"loaded without db", true, "db not configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, err := buildRouter(logDiscard(), nil, Deps{
				CheckoutSvc:  &stubCheckoutService{},
				ContentSvc:   &stubContentService{},
				BuyerSvc:     &stubBuyerService{},
				RemoteConfig: stubConfigStatus{loaded: tc.loaded},
			}, nil)
			if err != nil {
				t.Fatalf("build router: %v", err)
			}
			rec := do(router, http.MethodGet, "/readyz", "")
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["reason"] != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, body["reason"])
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, &stubCheckoutService{})
	req := httptest.NewRequest(http.MethodOptions, "/checkouts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestBuyerRoutes(t *testing.T) {
	router := newTestRouter(t, &stubCheckoutService{})

	rec := do(router, http.MethodGet, "/buyers/b1/balance", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"amount":"12.34"`) {
		t.Fatalf("unexpected balance response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodPost, "/buyers/b1/balance/credit", `{"cents":66}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"centAmount":1300`) {
		t.Fatalf("unexpected credit response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodPost, "/buyers/b1/balance/credit", `{"cents":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty credit, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, "/buyers/b1/purchases", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"amount":"5.00"`) {
		t.Fatalf("unexpected purchases response %d %s", rec.Code, rec.Body.String())
	}
}
