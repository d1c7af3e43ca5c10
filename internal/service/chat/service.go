package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/locale"
	"github.com/zhouzirui/mnchat/internal/model/chat"
	"github.com/zhouzirui/mnchat/internal/service/exchange"
)

// Observer receives a copy of the session after every state change.
type Observer func(chat.Snapshot)

// Option configures a Service.
type Option func(*Service)

// WithEndpoint overrides chat.DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *Service) { s.endpoint = endpoint }
}

// WithLocale selects the catalog used for failure turns.
func WithLocale(code string) Option {
	return func(s *Service) { s.catalog = locale.Lookup(code) }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds each exchange. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// Service owns one chat session: the transcript, the endpoint, the draft
// input and the awaiting-reply flag. At most one exchange is in flight.
type Service struct {
	exchanger exchange.Exchanger
	catalog   locale.Catalog
	logger    *zap.Logger
	timeout   time.Duration
	id        string

	mu         sync.RWMutex
	endpoint   string
	transcript []chat.Turn
	draft      string
	pending    bool

	// seq numbers state changes under mu; observers receive them in that
	// order, delivered counting the ones already handed out.
	seq uint64

	obsMu     sync.Mutex
	turn      *sync.Cond
	delivered uint64
	observers map[uint64]Observer
	nextObs   uint64
}

// NewService creates an idle session with an empty transcript.
func NewService(exchanger exchange.Exchanger, opts ...Option) *Service {
	s := &Service{
		exchanger:  exchanger,
		catalog:    locale.Lookup(string(locale.Default)),
		logger:     zap.NewNop(),
		id:         uuid.NewString(),
		endpoint:   chat.DefaultEndpoint,
		transcript: make([]chat.Turn, 0, 16),
		observers:  make(map[uint64]Observer),
	}
	s.turn = sync.NewCond(&s.obsMu)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

// ID identifies the session in logs.
func (s *Service) ID() string { return s.id }

// Catalog returns the strings of the session locale.
func (s *Service) Catalog() locale.Catalog { return s.catalog }

// Submit appends a user turn with text and starts an exchange with the
// current endpoint. The user turn, the cleared draft and the pending flag are
// all visible to observers before Submit returns. The returned channel closes
// once the reply or failure turn has been appended and the session is idle
// again.
//
// Submit is a no-op returning ok=false when text is blank or an exchange is
// already in flight.
func (s *Service) Submit(ctx context.Context, text string) (done <-chan struct{}, ok bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		s.logger.Debug("submit ignored while awaiting reply")
		return nil, false
	}
	history := make([]chat.Turn, len(s.transcript))
	copy(history, s.transcript)
	s.transcript = append(s.transcript, chat.UserTurn(text))
	s.draft = ""
	s.pending = true
	endpoint := s.endpoint
	seq, snap := s.changedLocked()
	s.mu.Unlock()

	s.publish(seq, snap)

	finished := make(chan struct{})
	go s.run(ctx, endpoint, chat.Request{Message: text, History: history}, finished)
	return finished, true
}

// SubmitDraft submits the pending input buffer.
func (s *Service) SubmitDraft(ctx context.Context) (<-chan struct{}, bool) {
	return s.Submit(ctx, s.Draft())
}

func (s *Service) run(ctx context.Context, endpoint string, req chat.Request, finished chan<- struct{}) {
	defer close(finished)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger := s.logger.With(zap.String("exchange", uuid.NewString()), zap.String("endpoint", endpoint))
	logger.Debug("exchange started", zap.Int("history", len(req.History)))

	var reply chat.Turn
	resp, err := s.exchanger.Exchange(ctx, endpoint, req)
	if err != nil {
		logger.Warn("exchange failed", zap.Error(err))
		reply = chat.FailureTurn(s.catalog.Failure(s.failureReason(err)))
	} else {
		logger.Debug("exchange completed", zap.Int("length", len(resp.Text())))
		reply = chat.AssistantTurn(resp.Text())
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, reply)
	s.pending = false
	seq, snap := s.changedLocked()
	s.mu.Unlock()

	s.publish(seq, snap)
}

// failureReason mirrors what the user would have seen from the HTTP layer: a
// fixed "not responding" text for failure statuses and the cause otherwise.
func (s *Service) failureReason(err error) string {
	var reqErr *exchange.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Status != 0 {
			return s.catalog.NotResponding
		}
		if reqErr.Err != nil {
			return reqErr.Err.Error()
		}
	}
	return err.Error()
}

// Clear empties the transcript. The endpoint and pending flag are untouched;
// an in-flight reply is still appended when it settles.
func (s *Service) Clear() {
	s.mu.Lock()
	s.transcript = make([]chat.Turn, 0, 16)
	seq, snap := s.changedLocked()
	s.mu.Unlock()
	s.publish(seq, snap)
}

// SetEndpoint stores endpoint verbatim. Exchanges already in flight keep the
// endpoint they started with.
func (s *Service) SetEndpoint(endpoint string) {
	s.mu.Lock()
	s.endpoint = endpoint
	seq, snap := s.changedLocked()
	s.mu.Unlock()
	s.publish(seq, snap)
}

// Endpoint returns the configured endpoint.
func (s *Service) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// SetDraft replaces the pending input buffer.
func (s *Service) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	seq, snap := s.changedLocked()
	s.mu.Unlock()
	s.publish(seq, snap)
}

// Draft returns the pending input buffer.
func (s *Service) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Pending reports whether an exchange is in flight.
func (s *Service) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Transcript returns a copy of the turns in order.
func (s *Service) Transcript() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]chat.Turn, len(s.transcript))
	copy(copied, s.transcript)
	return copied
}

// Snapshot returns a copy of the whole session state.
func (s *Service) Snapshot() chat.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() chat.Snapshot {
	transcript := make([]chat.Turn, len(s.transcript))
	copy(transcript, s.transcript)
	return chat.Snapshot{
		ID:         s.id,
		Endpoint:   s.endpoint,
		Transcript: transcript,
		Pending:    s.pending,
		Draft:      s.draft,
	}
}

// Subscribe registers fn for change notifications. Observers run on the
// goroutine that made the change and may read s; they must not block and
// must not call the mutating methods of s.
func (s *Service) Subscribe(fn Observer) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// changedLocked numbers a state change and captures the state it produced.
// s.mu must be held for writing.
func (s *Service) changedLocked() (uint64, chat.Snapshot) {
	seq := s.seq
	s.seq++
	return seq, s.snapshotLocked()
}

// publish hands snap to the observers once every earlier change has been
// delivered, so observers see changes in seq order even when the exchange
// settles before Submit gets here.
func (s *Service) publish(seq uint64, snap chat.Snapshot) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for s.delivered != seq {
		s.turn.Wait()
	}
	for _, fn := range s.observers {
		fn(snap)
	}
	s.delivered++
	s.turn.Broadcast()
}
