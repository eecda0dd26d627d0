// Package checkout hosts open checkout sessions. Every session runs its own
// event loop that serializes intents, balance updates and submission results.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/balance"
	core "contentcheckout/internal/checkout"
	"contentcheckout/internal/domain"
	"contentcheckout/internal/metrics"
)

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("invalid input")

type contentProvider interface {
	GetPurchaseConditions(ctx context.Context, contentID string) (domain.PurchaseConditions, error)
}

type fundsMover interface {
	Submit(ctx context.Context, req domain.FundsRequest) error
}

type balanceObserver interface {
	balance.Observer
	Run(ctx context.Context)
}

type Options struct {
	BalancePollInterval    time.Duration
	SubmitTimeout          time.Duration
	StandaloneTransferPage bool
}

type Service struct {
	content contentProvider
	funds   fundsMover
	remote  core.RemoteConfig
	opts    Options
	logger  logrus.FieldLogger

	newObserver func(buyerID string) balanceObserver
	newID       func() string

	mu       sync.Mutex
	sessions map[string]*session
	byTarget map[targetKey]string
	targets  map[string]targetKey
	closing  bool
}

type targetKey struct {
	buyerID   string
	contentID string
}

func New(content contentProvider, funds fundsMover, balances balance.Source, remote core.RemoteConfig, opts Options, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 30 * time.Second
	}
	logger = logger.WithField("component", "checkout")
	return &Service{
		content: content,
		funds:   funds,
		remote:  remote,
		opts:    opts,
		logger:  logger,
		newObserver: func(buyerID string) balanceObserver {
			return balance.NewPoller(balances, buyerID, opts.BalancePollInterval, logger)
		},
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
		byTarget: make(map[targetKey]string),
		targets:  make(map[string]targetKey),
	}
}

type OpenInput struct {
	BuyerID             string `json:"buyerId"`
	ContentID           string `json:"contentId"`
	Platform            string `json:"platform"`
	ShowExistingBalance bool   `json:"showExistingBalance"`
}

// Open starts a checkout for one content item. Only one session may be open per
// buyer and content.
func (s *Service) Open(ctx context.Context, in OpenInput) (View, error) {
	buyerID := strings.TrimSpace(in.BuyerID)
	contentID := strings.TrimSpace(in.ContentID)
	if buyerID == "" {
		return View{}, fmt.Errorf("%w: buyerId required", ErrInvalidInput)
	}
	if contentID == "" {
		return View{}, fmt.Errorf("%w: contentId required", ErrInvalidInput)
	}
	conditions, err := s.content.GetPurchaseConditions(ctx, contentID)
	if err != nil {
		return View{}, err
	}

	key := targetKey{buyerID: buyerID, contentID: contentID}
	id := s.newID()
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return View{}, core.ErrSessionClosed
	}
	if _, ok := s.byTarget[key]; ok {
		s.mu.Unlock()
		return View{}, domain.ErrSessionExists
	}
	s.byTarget[key] = id
	s.targets[id] = key
	s.mu.Unlock()

	observer := s.newObserver(buyerID)
	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:      id,
		buyerID: buyerID,
		machine: core.NewMachine(core.Options{
			ContentID:                 contentID,
			Conditions:                conditions,
			Platform:                  domain.ParsePlatform(in.Platform),
			ShowExistingBalance:       in.ShowExistingBalance,
			HasStandaloneTransferPage: s.opts.StandaloneTransferPage,
			Balance:                   observer.CurrentBalance(),
		}, s.remote),
		funds:   s.funds,
		timeout: s.opts.SubmitTimeout,
		logger:  s.logger.WithFields(logrus.Fields{"session": id, "buyer": buyerID}),
		cmds:    make(chan command),
		results: make(chan result, 1),
		ctx:     sessCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	go observer.Run(sessCtx)
	go sess.run(observer.Updates())
	go s.reap(sess)
	metrics.SessionOpened()
	sess.logger.WithField("content", contentID).Info("checkout opened")

	return sess.do(ctx, nil)
}

// reap unregisters a session once its loop has stopped.
func (s *Service) reap(sess *session) {
	<-sess.done
	s.mu.Lock()
	if key, ok := s.targets[sess.id]; ok {
		delete(s.byTarget, key)
		delete(s.targets, sess.id)
	}
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	metrics.SessionClosed()
}

func (s *Service) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func (s *Service) withSession(ctx context.Context, id string, fn func(sess *session) error) (View, error) {
	sess, err := s.get(id)
	if err != nil {
		return View{}, err
	}
	v, err := sess.do(ctx, fn)
	if errors.Is(err, core.ErrSessionClosed) {
		return View{}, domain.ErrNotFound
	}
	return v, err
}

func (s *Service) withMachine(ctx context.Context, id string, fn func(m *core.Machine) error) (View, error) {
	if fn == nil {
		return s.withSession(ctx, id, nil)
	}
	return s.withSession(ctx, id, func(sess *session) error { return fn(sess.machine) })
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	return s.withMachine(ctx, id, nil)
}

func (s *Service) SelectMethod(ctx context.Context, id string, method domain.PurchaseMethod) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.SelectMethod(method) })
}

func (s *Service) SetExtraAmount(ctx context.Context, id string, preset domain.PayExtraPreset, customCents int64) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.SetExtraAmount(preset, customCents) })
}

func (s *Service) SetVendorPreference(ctx context.Context, id string, vendor domain.PurchaseVendor) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.SetVendorPreference(vendor) })
}

func (s *Service) Continue(ctx context.Context, id string) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.Continue() })
}

func (s *Service) CompleteTransfer(ctx context.Context, id string) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.CompleteTransfer() })
}

func (s *Service) GoBack(ctx context.Context, id string) (View, error) {
	return s.withMachine(ctx, id, func(m *core.Machine) error { return m.GoBack() })
}

// Submit starts the purchase. The returned view is in the unlocking stage; the
// outcome shows up in later views.
func (s *Service) Submit(ctx context.Context, id string) (View, error) {
	return s.withSession(ctx, id, func(sess *session) error { return sess.submit() })
}

// ChangeTarget points the session at another content item, starting the
// checkout over. A submission in flight is disconnected.
func (s *Service) ChangeTarget(ctx context.Context, id, contentID string) (View, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return View{}, fmt.Errorf("%w: contentId required", ErrInvalidInput)
	}
	sess, err := s.get(id)
	if err != nil {
		return View{}, err
	}
	conditions, err := s.content.GetPurchaseConditions(ctx, contentID)
	if err != nil {
		return View{}, err
	}

	// Target changes on one session run one at a time so the reservation
	// bookkeeping below always starts from the session's current target.
	sess.retarget.Lock()
	defer sess.retarget.Unlock()

	next := targetKey{buyerID: sess.buyerID, contentID: contentID}
	s.mu.Lock()
	prev, ok := s.targets[id]
	if !ok {
		s.mu.Unlock()
		return View{}, domain.ErrNotFound
	}
	if owner, taken := s.byTarget[next]; taken && owner != id {
		s.mu.Unlock()
		return View{}, domain.ErrSessionExists
	}
	s.byTarget[next] = id
	s.mu.Unlock()

	v, err := s.withMachine(ctx, id, func(m *core.Machine) error { return m.ResetForTarget(contentID, conditions) })

	s.mu.Lock()
	defer s.mu.Unlock()
	current, live := s.targets[id]
	if err != nil || !live {
		// Reaped meanwhile, or the reset failed: drop the new reservation.
		if next != current && s.byTarget[next] == id {
			delete(s.byTarget, next)
		}
		if err == nil {
			err = domain.ErrNotFound
		}
		return View{}, err
	}
	if next != prev {
		delete(s.byTarget, prev)
		s.targets[id] = next
	}
	return v, nil
}

// Close tears the session down. It fails with checkout.ErrCloseBlocked while a
// purchase is unlocking.
func (s *Service) Close(ctx context.Context, id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	_, err = sess.do(ctx, func(sess *session) error { return sess.machine.Cleanup() })
	if errors.Is(err, core.ErrSessionClosed) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	select {
	case <-sess.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	sess.logger.Info("checkout closed")
	return nil
}

// Shutdown stops every session loop without waiting for purchases in flight.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.cancel()
	}
	for _, sess := range open {
		select {
		case <-sess.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
