package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"angohost-storefront/internal/client"
)

type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionLoading SessionState = "loading"
	SessionReady   SessionState = "ready"
	SessionError   SessionState = "error"
)

// GatewaySession is the bootstrap state of one payment frame session.
type GatewaySession struct {
	State    SessionState `json:"state"`
	FrameURL string       `json:"frame_url,omitempty"`
	Token    string       `json:"-"`
	Message  string       `json:"message,omitempty"`
	// ManualFallback is set when the failure matches the gateway's known
	// upstream signature, unlocking the "I already paid" path.
	ManualFallback bool `json:"manual_fallback,omitempty"`
}

// SessionBootstrapper obtains embeddable frame sessions from the gateway
// and tracks their state per order reference.
type SessionBootstrapper struct {
	emis client.EmisClient

	mu       sync.Mutex
	sessions map[string]*GatewaySession
}

func NewSessionBootstrapper(emis client.EmisClient) *SessionBootstrapper {
	return &SessionBootstrapper{
		emis:     emis,
		sessions: make(map[string]*GatewaySession),
	}
}

// InitializePayment requests a frame session for amount+reference. The
// session moves idle → loading → ready|error; the error state keeps a
// user-facing message and is recoverable via ResetPayment or, for the
// known upstream failure signature, the manual confirmation fallback.
func (b *SessionBootstrapper) InitializePayment(ctx context.Context, amount int64, reference string) *GatewaySession {
	b.mu.Lock()
	session := &GatewaySession{State: SessionLoading}
	b.sessions[reference] = session
	b.mu.Unlock()

	frame, err := b.emis.CreateFrameToken(ctx, amount, reference)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		session.State = SessionError
		if errors.Is(err, client.ErrUpstreamRejected) {
			session.Message = "O gateway de pagamento está temporariamente indisponível. Pode confirmar o pagamento manualmente."
			session.ManualFallback = true
		} else {
			session.Message = fmt.Sprintf("Não foi possível iniciar a sessão de pagamento: %v", err)
		}
		return session
	}

	session.State = SessionReady
	session.FrameURL = frame.FrameURL
	session.Token = frame.Token
	return session
}

// ResetPayment returns the session to idle so the user can retry.
func (b *SessionBootstrapper) ResetPayment(reference string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, reference)
}

// Session returns the current session state for a reference, or an idle
// session when none was initialized.
func (b *SessionBootstrapper) Session(reference string) *GatewaySession {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[reference]; ok {
		return s
	}
	return &GatewaySession{State: SessionIdle}
}
