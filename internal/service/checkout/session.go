package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	core "contentcheckout/internal/checkout"
	"contentcheckout/internal/domain"
	"contentcheckout/internal/metrics"
)

// View is what callers see of a session.
type View struct {
	ID          string        `json:"id"`
	BuyerID     string        `json:"buyerId"`
	Snapshot    core.Snapshot `json:"checkout"`
	Submittable bool          `json:"submittable"`
}

type command struct {
	fn    func(s *session) error
	reply chan reply
}

type reply struct {
	view View
	err  error
}

type result struct {
	attempt int64
	err     error
}

// session owns one checkout machine. Only its loop goroutine touches the machine.
type session struct {
	id      string
	buyerID string
	machine *core.Machine
	funds   fundsMover
	timeout time.Duration
	logger  logrus.FieldLogger

	// retarget serializes ChangeTarget calls on this session.
	retarget sync.Mutex

	cmds    chan command
	results chan result
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *session) view() View {
	return View{
		ID:          s.id,
		BuyerID:     s.buyerID,
		Snapshot:    s.machine.Snapshot(),
		Submittable: s.machine.Submittable(),
	}
}

func (s *session) run(updates <-chan domain.Balance) {
	defer close(s.done)
	defer s.cancel()
	for {
		select {
		case <-s.ctx.Done():
			return
		case b, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.machine.OnBalance(b)
		case r := <-s.results:
			if !s.machine.OnExternalResult(r.attempt, r.err) {
				s.logger.WithField("attempt", r.attempt).Debug("dropped stale submission result")
				continue
			}
			pe := domain.AsPurchaseError(r.err)
			if pe == nil {
				metrics.RecordResult("")
				s.logger.WithField("attempt", r.attempt).Info("purchase succeeded")
			} else {
				metrics.RecordResult(string(pe.Code))
				s.logger.WithField("attempt", r.attempt).WithField("code", pe.Code).Warn("purchase failed")
			}
		case cmd := <-s.cmds:
			// Remote settings may have changed since the last event.
			s.machine.Refresh()
			var err error
			if cmd.fn != nil {
				err = cmd.fn(s)
			}
			cmd.reply <- reply{view: s.view(), err: err}
			if s.machine.Closed() {
				return
			}
		}
	}
}

// do runs fn on the loop goroutine and returns the resulting view.
func (s *session) do(ctx context.Context, fn func(s *session) error) (View, error) {
	cmd := command{fn: fn, reply: make(chan reply, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return View{}, core.ErrSessionClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r.view, r.err
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// submit freezes the checkout and hands it to funds movement in the background.
func (s *session) submit() error {
	sub, err := s.machine.Submit()
	if err != nil {
		return err
	}
	metrics.RecordSubmission(string(sub.Method), string(sub.Vendor))
	s.logger.WithFields(logrus.Fields{
		"attempt":    sub.Attempt,
		"content":    sub.ContentID,
		"method":     sub.Method,
		"vendor":     sub.Vendor,
		"dueCents":   sub.AmountDueCents,
		"topUpCents": sub.TopUpCents,
	}).Info("checkout submitted")

	req := domain.FundsRequest{
		BuyerID:        s.buyerID,
		ContentID:      sub.ContentID,
		Method:         sub.Method,
		Vendor:         sub.Vendor,
		Summary:        sub.Summary,
		AmountDueCents: sub.AmountDueCents,
		TopUpCents:     sub.TopUpCents,
	}
	go func() {
		// Funds movement is not interrupted when the session goes away.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.timeout)
		defer cancel()
		start := time.Now()
		err := s.funds.Submit(ctx, req)
		metrics.ObserveFunds(string(req.Method), time.Since(start))
		select {
		case s.results <- result{attempt: sub.Attempt, err: err}:
		case <-s.done:
		}
	}()
	return nil
}
