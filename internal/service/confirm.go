package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"angohost-storefront/internal/client"
)

const (
	defaultPollInterval = 5 * time.Second
	// An abandoned frame session (never completed, never cancelled) is
	// expired after this long.
	defaultWatchExpiry = 30 * time.Minute
)

type watchState int

const (
	watchRunning watchState = iota
	watchDone
	watchCancelled
)

// SuccessFunc is invoked exactly once per checkout attempt when either
// confirmation channel reports completion. source is "callback" or "poll".
type SuccessFunc func(ctx context.Context, reference, transactionID, source string)

// CancelFunc is invoked when a watcher ends without success: user
// cancellation or expiry.
type CancelFunc func(ctx context.Context, reference string, expired bool)

type confirmSignal struct {
	transactionID string
	source        string
}

// callbackPayload is the completion message relayed from the payment
// frame. Only well-formed payloads with a success status and a
// transaction id are accepted.
type callbackPayload struct {
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id"`
}

type watcher struct {
	reference string
	token     string

	mu      sync.Mutex
	state   watchState
	signals chan confirmSignal
	cancel  context.CancelFunc
	done    chan struct{}
}

// ConfirmationService watches active gateway sessions for completion.
// Each watcher listens on two independent channels — pushed callback
// signals and a periodic status poll — either of which may complete the
// attempt; completion fires the success callback at most once, and both
// channels are torn down together on every exit path.
type ConfirmationService struct {
	emis         client.EmisClient
	pollInterval time.Duration
	expiry       time.Duration

	mu       sync.Mutex
	watchers map[string]*watcher
}

func NewConfirmationService(emis client.EmisClient) *ConfirmationService {
	return &ConfirmationService{
		emis:         emis,
		pollInterval: defaultPollInterval,
		expiry:       defaultWatchExpiry,
		watchers:     make(map[string]*watcher),
	}
}

// Watch starts confirmation watching for one checkout attempt. A second
// Watch for the same reference replaces the previous watcher.
func (s *ConfirmationService) Watch(reference, frameToken string, onSuccess SuccessFunc, onCancel CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	w := &watcher{
		reference: reference,
		token:     frameToken,
		state:     watchRunning,
		signals:   make(chan confirmSignal, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.watchers[reference]; ok {
		prev.stop(watchCancelled)
	}
	s.watchers[reference] = w
	s.mu.Unlock()

	go s.run(ctx, w, onSuccess, onCancel)
}

func (s *ConfirmationService) run(ctx context.Context, w *watcher, onSuccess SuccessFunc, onCancel CancelFunc) {
	defer close(w.done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	expiry := time.NewTimer(s.expiry)
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-w.signals:
			if w.complete() {
				onSuccess(context.Background(), w.reference, sig.transactionID, sig.source)
				s.remove(w.reference)
				return
			}

		case <-ticker.C:
			status, err := s.emis.GetPaymentStatus(ctx, w.token)
			if err != nil {
				log.Printf("payment status poll for %s: %v", w.reference, err)
				continue
			}
			if status.Status == "completed" && status.TransactionID != "" {
				if w.complete() {
					onSuccess(context.Background(), w.reference, status.TransactionID, "poll")
					s.remove(w.reference)
					return
				}
			}

		case <-expiry.C:
			if w.stop(watchCancelled) {
				onCancel(context.Background(), w.reference, true)
			}
			s.remove(w.reference)
			return
		}
	}
}

// Signal feeds a pushed completion message into the watcher for the given
// reference. The payload must parse as JSON carrying payment_status
// "success" and a transaction id; anything else is ignored.
func (s *ConfirmationService) Signal(reference string, payload []byte) error {
	var msg callbackPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil
	}
	if msg.PaymentStatus != "success" || msg.TransactionID == "" {
		return nil
	}

	s.mu.Lock()
	w, ok := s.watchers[reference]
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveSession
	}

	select {
	case w.signals <- confirmSignal{transactionID: msg.TransactionID, source: "callback"}:
	default:
		// a signal is already queued; one completion is enough
	}
	return nil
}

// Cancel tears down the watcher for a reference as a user-initiated
// cancellation.
func (s *ConfirmationService) Cancel(ctx context.Context, reference string, onCancel CancelFunc) error {
	s.mu.Lock()
	w, ok := s.watchers[reference]
	delete(s.watchers, reference)
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveSession
	}

	if w.stop(watchCancelled) {
		onCancel(ctx, reference, false)
	}
	return nil
}

// Discard stops the watcher for a reference without reporting an outcome.
// Used once a completion has been finalized through another path, such as
// the manual confirmation fallback.
func (s *ConfirmationService) Discard(reference string) {
	s.mu.Lock()
	w, ok := s.watchers[reference]
	delete(s.watchers, reference)
	s.mu.Unlock()
	if ok {
		w.stop(watchDone)
	}
}

// Close stops every active watcher. Called on shutdown.
func (s *ConfirmationService) Close() {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = make(map[string]*watcher)
	s.mu.Unlock()

	for _, w := range watchers {
		w.stop(watchCancelled)
	}
}

// Active reports whether a watcher is still running for the reference.
func (s *ConfirmationService) Active(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watchers[reference]
	return ok
}

func (s *ConfirmationService) remove(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.watchers[reference]; ok {
		w.cancel()
		delete(s.watchers, reference)
	}
}

// complete transitions running → done. Returns false when the watcher
// already completed or was cancelled, making the completion callback
// at-most-once even when both channels fire near-simultaneously.
func (w *watcher) complete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != watchRunning {
		return false
	}
	w.state = watchDone
	return true
}

// stop moves the watcher into a terminal state and cancels its context.
// Returns true when this call performed the transition.
func (w *watcher) stop(to watchState) bool {
	w.mu.Lock()
	transitioned := w.state == watchRunning
	if transitioned {
		w.state = to
	}
	w.mu.Unlock()

	w.cancel()
	return transitioned
}
