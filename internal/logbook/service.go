// Package logbook is the service layer between the UI and the comment
// thread: it validates submissions against the roster, encodes them for
// the thread, and materializes cached snapshots of the full log.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mannskor/ovingslogg/internal/entry"
	"github.com/mannskor/ovingslogg/internal/roster"
	"github.com/mannskor/ovingslogg/internal/store"
	"go.uber.org/zap"
)

const defaultCacheTTL = 30 * time.Second

var (
	errMissingStore  = errors.New("comment store is required")
	errMissingRoster = errors.New("roster must not be empty")
	noOpLogger       = zap.NewNop()
)

// ServiceError carries a stable operation.reason code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "logbook.service.new"
	opSubmit     = "logbook.submit"
	opLoad       = "logbook.load"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig bundles the dependencies of the logbook service.
type ServiceConfig struct {
	Store           store.CommentStore
	Roster          roster.Roster
	DurationOptions []int
	Repertoire      []string
	Clock           func() time.Time
	CacheTTL        time.Duration
	Logger          *zap.Logger
}

// Service coordinates submissions and cached reads over one comment store.
type Service struct {
	store           store.CommentStore
	roster          roster.Roster
	durationOptions []int
	repertoire      []string
	clock           func() time.Time
	cache           *snapshotCache
	logger          *zap.Logger
}

// NewService validates the configuration and applies defaults.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, newServiceError(opServiceNew, "missing_store", errMissingStore)
	}
	if len(cfg.Roster.Groups) == 0 {
		return nil, newServiceError(opServiceNew, "missing_roster", errMissingRoster)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	durationOptions := cfg.DurationOptions
	if len(durationOptions) == 0 {
		durationOptions = roster.DefaultDurationOptions
	}

	repertoire := cfg.Repertoire
	if len(repertoire) == 0 {
		repertoire = roster.DefaultRepertoire
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		store:           cfg.Store,
		roster:          cfg.Roster,
		durationOptions: durationOptions,
		repertoire:      repertoire,
		clock:           clock,
		cache:           newSnapshotCache(cacheTTL),
		logger:          logger,
	}, nil
}

// Roster exposes the configured roster for form rendering.
func (s *Service) Roster() roster.Roster {
	return s.roster
}

// DurationOptions exposes the offered session lengths for form rendering.
func (s *Service) DurationOptions() []int {
	return s.durationOptions
}

// Repertoire exposes the practiced-item catalog for form rendering.
func (s *Service) Repertoire() []string {
	return s.repertoire
}

// SubmitRequest is one practice session as entered on the form.
type SubmitRequest struct {
	Member    string
	Minutes   int
	Practiced []string
}

// Submit validates the request, stamps it with the current instant, encodes
// it and appends it to the thread. The snapshot cache for the issue is
// invalidated on success so the entry shows up on the next read. No retry
// on failure: the caller must treat an error as "maybe not stored".
func (s *Service) Submit(ctx context.Context, issueNumber int, req SubmitRequest) (entry.PracticeEntry, error) {
	group, err := s.roster.GroupOf(req.Member)
	if err != nil {
		return entry.PracticeEntry{}, newServiceError(opSubmit, "invalid_member", err)
	}
	if err := roster.ValidateDuration(req.Minutes, s.durationOptions); err != nil {
		return entry.PracticeEntry{}, newServiceError(opSubmit, "invalid_duration", err)
	}
	if err := roster.ValidatePracticed(req.Practiced, s.repertoire); err != nil {
		return entry.PracticeEntry{}, newServiceError(opSubmit, "invalid_item", err)
	}

	now := s.clock()
	submitted := entry.PracticeEntry{
		Version:   entry.SchemaVersion,
		Timestamp: now.Truncate(time.Second),
		Date:      now.Format(entry.DateLayout),
		Group:     group,
		Member:    req.Member,
		Minutes:   req.Minutes,
		Practiced: req.Practiced,
	}

	encoded, err := entry.Encode(submitted)
	if err != nil {
		s.logError(opSubmit, "encode_failed", err, zap.String("member", req.Member))
		return entry.PracticeEntry{}, newServiceError(opSubmit, "encode_failed", err)
	}

	if err := s.store.AppendComment(ctx, issueNumber, encoded); err != nil {
		s.logError(opSubmit, "append_failed", err,
			zap.Int("issue", issueNumber),
			zap.String("member", req.Member))
		return entry.PracticeEntry{}, newServiceError(opSubmit, "append_failed", err)
	}

	s.cache.invalidate(issueNumber)
	s.logger.Info("practice session logged",
		zap.Int("issue", issueNumber),
		zap.String("member", req.Member),
		zap.Int("minutes", req.Minutes))

	return submitted, nil
}

// Load returns the decoded log for the issue. Reads within the cache TTL
// reuse the previous snapshot without touching the remote thread.
func (s *Service) Load(ctx context.Context, issueNumber int) (Snapshot, error) {
	if snapshot, ok := s.cache.get(issueNumber, s.clock()); ok {
		return snapshot, nil
	}

	bodies, err := s.store.ListComments(ctx, issueNumber)
	if err != nil {
		s.logError(opLoad, "list_failed", err, zap.Int("issue", issueNumber))
		return Snapshot{}, newServiceError(opLoad, "list_failed", err)
	}

	fetchedAt := s.clock()
	snapshot := Snapshot{
		Entries:   entry.DecodeAll(bodies, s.logger),
		FetchedAt: fetchedAt,
	}
	s.cache.store(issueNumber, snapshot, fetchedAt)

	return snapshot, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("logbook service error", attrs...)
}
