// Package service owns the live identity-resolution configuration for one
// hosting session. All transitions come from the models package; the
// Session swaps state, persists and announces each change.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idres/internal/events"
	"idres/internal/identity/metrics"
	"idres/internal/identity/models"
	"idres/internal/identity/store"
	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/sentinel"
	"idres/pkg/requestcontext"
)

const tracerName = "idres/internal/identity/service"

// Store persists both lists.
type Store interface {
	Load(ctx context.Context) (store.Snapshot, error)
	Save(ctx context.Context, fields, deleted []models.IdentifierField) error
}

// Publisher announces configuration changes.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Session is the explicit configuration object of one hosting session.
// Operations are serialized; each runs to completion before the next starts.
type Session struct {
	mu     sync.Mutex
	id     string
	state  models.State
	closed bool

	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Session) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Open loads persisted state and returns a ready Session. The catalog seed
// is used only when the store holds nothing. Any other load failure is
// returned so a transient read error can never lead to the seed being saved
// over the operator's configuration.
func Open(ctx context.Context, st Store, opts ...Option) (*Session, error) {
	s := &Session{
		id:        uuid.NewString(),
		store:     st,
		publisher: &events.NoopPublisher{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	ctx, span := s.tracer.Start(ctx, "identity.Open", trace.WithAttributes(attribute.String("session_id", s.id)))
	defer span.End()

	snap, err := st.Load(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		snap, err = store.Snapshot{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.logger.ErrorContext(ctx, "failed to load identity config",
			"session_id", s.id,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load identity config")
	}

	if len(snap.Corrupt) > 0 {
		s.logger.WarnContext(ctx, "discarded undecodable identity config documents",
			"session_id", s.id,
			"keys", snap.Corrupt,
		)
	}
	state, report := snap.State()
	s.state = state
	s.metrics.SetSizes(len(state.Fields), len(state.Deleted))
	span.SetAttributes(attribute.Bool("found", snap.Found), attribute.Int("fields", len(state.Fields)))

	if !report.Clean() {
		s.logger.WarnContext(ctx, "repaired persisted identity config",
			"session_id", s.id,
			"replaced", report.Replaced,
			"dropped", report.Dropped,
		)
		s.metrics.ObserveRepairs(len(report.Replaced), len(report.Dropped))
	}
	if !report.Clean() || len(snap.Corrupt) > 0 {
		s.save(ctx)
	}
	return s, nil
}

// ID identifies the session in logs and events.
func (s *Session) ID() string {
	return s.id
}

// Config returns a copy of the current configuration.
func (s *Session) Config() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Reorder(ctx context.Context, src, dst int) (models.State, error) {
	return s.mutate(ctx, events.OpReorder, func(st models.State) (models.State, string, error) {
		next, err := st.Reorder(src, dst)
		return next, fieldAt(st, src), err
	})
}

func (s *Session) ToggleEnabled(ctx context.Context, index int) (models.State, error) {
	return s.mutate(ctx, events.OpToggleEnabled, func(st models.State) (models.State, string, error) {
		next, err := st.ToggleEnabled(index)
		return next, fieldAt(st, index), err
	})
}

func (s *Session) SetMatchLimit(ctx context.Context, index, limit int) (models.State, error) {
	return s.mutate(ctx, events.OpSetMatchLimit, func(st models.State) (models.State, string, error) {
		next, err := st.SetMatchLimit(index, limit)
		return next, fieldAt(st, index), err
	})
}

func (s *Session) SetMatchFrequency(ctx context.Context, index int, f models.MatchFrequency) (models.State, error) {
	return s.mutate(ctx, events.OpSetMatchFrequency, func(st models.State) (models.State, string, error) {
		next, err := st.SetMatchFrequency(index, f)
		return next, fieldAt(st, index), err
	})
}

// AddCustom appends a custom identifier. A blank name changes nothing.
func (s *Session) AddCustom(ctx context.Context, name string) (models.State, error) {
	return s.mutate(ctx, events.OpAddCustom, func(st models.State) (models.State, string, error) {
		next, added, err := st.AddCustom(name)
		if err != nil || !added {
			return next, "", err
		}
		return next, next.Fields[len(next.Fields)-1].ID, nil
	})
}

// Remove deletes the field at index, routing it to the ledger when eligible.
func (s *Session) Remove(ctx context.Context, index int) (models.State, error) {
	return s.mutate(ctx, events.OpRemove, func(st models.State) (models.State, string, error) {
		next, removed, _, err := st.Remove(index)
		return next, removed.ID, err
	})
}

// Restore returns a ledger entry to the end of the field list.
func (s *Session) Restore(ctx context.Context, id string) (models.State, error) {
	return s.mutate(ctx, events.OpRestore, func(st models.State) (models.State, string, error) {
		next, found := st.Restore(id)
		if !found {
			return st, id, dErrors.New(dErrors.CodeNotFound, "no deleted identifier "+id)
		}
		return next, id, nil
	})
}

// RestoreDefaults re-adds missing catalog entries and clears the ledger.
func (s *Session) RestoreDefaults(ctx context.Context) (models.State, error) {
	return s.mutate(ctx, events.OpRestoreDefaults, func(st models.State) (models.State, string, error) {
		next, _ := st.RestoreDefaults()
		return next, "", nil
	})
}

// Close saves one last time and rejects further mutations. Closing twice is
// a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "identity.Close", trace.WithAttributes(attribute.String("session_id", s.id)))
	defer span.End()

	s.closed = true
	if err := s.save(ctx); err != nil {
		span.SetStatus(codes.Error, "final save failed")
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "final save failed")
	}
	return nil
}

type transition func(models.State) (next models.State, fieldID string, err error)

func (s *Session) mutate(ctx context.Context, op string, fn transition) (models.State, error) {
	ctx, span := s.tracer.Start(ctx, "identity."+op, trace.WithAttributes(
		attribute.String("session_id", s.id),
		attribute.String("operation", op),
	))
	defer span.End()

	next, evt, err := s.apply(ctx, op, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.MessageOf(err))
		return next, err
	}
	if evt.FieldID != "" {
		span.SetAttributes(attribute.String("field_id", evt.FieldID))
	}
	s.publish(ctx, evt)
	return next, nil
}

// apply runs one transition under the lock and saves the result. The change
// event is built here but published by the caller once the lock is released.
func (s *Session) apply(ctx context.Context, op string, fn transition) (models.State, events.ConfigChanged, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		err := dErrors.New(dErrors.CodeInvalidState, "session is closed")
		s.metrics.ObserveOperation(op, err)
		return models.State{}, events.ConfigChanged{}, err
	}

	next, fieldID, err := fn(s.state)
	s.metrics.ObserveOperation(op, err)
	if err != nil {
		return s.state.Clone(), events.ConfigChanged{}, err
	}

	s.state = next
	s.metrics.SetSizes(len(next.Fields), len(next.Deleted))
	saveErr := s.save(ctx)
	return next.Clone(), s.changeEvent(ctx, op, fieldID, saveErr == nil), nil
}

// save persists the current state. Failures are logged and counted; the
// in-memory state is kept either way. Callers hold s.mu.
func (s *Session) save(ctx context.Context) error {
	start := time.Now()
	err := s.store.Save(ctx, s.state.Fields, s.state.Deleted)
	s.metrics.ObserveSave(start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist identity config",
			"session_id", s.id,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		trace.SpanFromContext(ctx).RecordError(err)
	}
	return err
}

// changeEvent snapshots the current order. Callers hold s.mu.
func (s *Session) changeEvent(ctx context.Context, op, fieldID string, persisted bool) events.ConfigChanged {
	return events.ConfigChanged{
		EventID:    uuid.NewString(),
		SessionID:  s.id,
		Operation:  op,
		FieldID:    fieldID,
		Operator:   requestcontext.Operator(ctx),
		Order:      ids(s.state.Fields),
		Deleted:    ids(s.state.Deleted),
		Persisted:  persisted,
		OccurredAt: requestcontext.Now(ctx),
	}
}

// publish runs without s.mu so a slow broker never blocks other mutations.
func (s *Session) publish(ctx context.Context, evt events.ConfigChanged) {
	if err := s.publisher.Publish(ctx, events.TopicConfigChanged, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish config change",
			"session_id", s.id,
			"operation", evt.Operation,
			"error", err,
		)
	}
}

func fieldAt(st models.State, i int) string {
	if i < 0 || i >= len(st.Fields) {
		return ""
	}
	return st.Fields[i].ID
}

func ids(fields []models.IdentifierField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.ID
	}
	return out
}
