package dvr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/recsched/internal/log"
	"github.com/ManuGH/recsched/internal/metrics"
	"github.com/ManuGH/recsched/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultKey is the preference key the recordings are persisted under.
const DefaultKey = "recordings"

// PrefStore is the key-value string store the scheduler persists to.
type PrefStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Program is an EPG entry that can be scheduled for recording.
type Program interface {
	ChannelID() string
	StartTime() time.Time
	LengthMinutes() int
}

// Clock interface for mocking time
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using standard time package
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Scheduler owns one Index and keeps it in sync with a PrefStore.
// Validation, insertion and persistence of a mutation happen under one lock.
type Scheduler struct {
	mu          sync.Mutex
	index       *Index
	store       PrefStore
	key         string
	expireHours int
	policy      ConflictPolicy
	clock       Clock
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithExpirePeriod sets how many hours after its start a recording is pruned.
func WithExpirePeriod(hours int) Option {
	return func(s *Scheduler) {
		if hours > 0 {
			s.expireHours = hours
		}
	}
}

// WithKey sets the preference key.
func WithKey(key string) Option {
	return func(s *Scheduler) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithConflictPolicy selects overlap rejection (default) or dedupe-only inserts.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// NewScheduler creates an empty scheduler backed by store. Call Load to restore
// previously persisted recordings.
func NewScheduler(store PrefStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		key:         DefaultKey,
		expireHours: DefaultExpirePeriodHours,
		policy:      ConflictReject,
		clock:       RealClock{},
		logger:      log.WithComponent("dvr.scheduler"),
		tracer:      telemetry.Tracer("dvr"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.index = NewIndex(s.policy)
	return s
}

// Load replaces the in-memory index with the persisted recordings. Malformed,
// expired and conflicting records are dropped with a warning; nothing is re-saved.
// On error the scheduler keeps an empty index.
func (s *Scheduler) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "dvr.load")
	defer span.End()

	fresh := NewIndex(s.policy)
	s.index = fresh
	metrics.SetRecords(0)

	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return fmt.Errorf("load recordings: %w", err)
	}
	if !ok {
		s.logger.Info().Str(log.FieldEvent, "recording.load_empty").Str(log.FieldKey, s.key).Msg("no persisted recordings")
		return nil
	}

	intervals, issues := Decode(raw)
	for _, issue := range issues {
		metrics.IncLoadSkipped(metrics.LoadSkippedMalformed)
		s.logger.Warn().
			Str(log.FieldEvent, "recording.load_skipped").
			Int("index", issue.Index).
			Str(log.FieldRecord, issue.Record).
			Str(log.FieldReason, issue.Reason).
			Msg("skipping malformed persisted recording")
	}

	now := s.clock.Now().Unix()
	for _, iv := range intervals {
		if Expired(iv.Start, now, s.expireHours) {
			metrics.IncLoadSkipped(metrics.LoadSkippedExpired)
			s.logger.Warn().
				Str(log.FieldEvent, "recording.load_skipped").
				Str(log.FieldChannelID, iv.ChannelID).
				Str(log.FieldStart, FormatStart(iv.Start)).
				Str(log.FieldReason, "expired").
				Msg("dropping expired recording")
			continue
		}
		if err := fresh.Insert(iv); err != nil {
			metrics.IncLoadSkipped(metrics.LoadSkippedConflict)
			s.logger.Warn().
				Str(log.FieldEvent, "recording.load_skipped").
				Str(log.FieldChannelID, iv.ChannelID).
				Str(log.FieldStart, FormatStart(iv.Start)).
				Str(log.FieldReason, err.Error()).
				Msg("dropping conflicting recording")
		}
	}

	metrics.SetRecords(fresh.Len())
	s.logger.Info().
		Str(log.FieldEvent, "recording.loaded").
		Int(log.FieldCount, fresh.Len()).
		Int("skipped", len(issues)+len(intervals)-fresh.Len()).
		Msg("recordings loaded")
	return nil
}

// AddRecord schedules [start, start+durationSeconds) on channelID. It returns false
// when the channel id is unusable, the duration is not positive, start lies in the
// past or beyond year 9999, or the interval conflicts with an existing recording.
func (s *Scheduler) AddRecord(ctx context.Context, channelID string, start time.Time, durationSeconds int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	iv := Interval{ChannelID: channelID, Start: start.Unix(), Duration: durationSeconds}

	ctx, span := s.tracer.Start(ctx, "dvr.add_record")
	defer span.End()
	span.SetAttributes(telemetry.RecordingAttributes(iv.ChannelID, iv.Start, iv.Duration)...)

	if !ValidChannelID(channelID) {
		s.reject(iv, metrics.AddResultInvalidChannel, "invalid channel id")
		return false
	}
	if durationSeconds <= 0 {
		s.reject(iv, metrics.AddResultInvalidDuration, ErrInvalidDuration.Error())
		return false
	}
	if EndOverflows(iv.Start, iv.Duration) {
		s.reject(iv, metrics.AddResultInvalidDuration, ErrEndOverflow.Error())
		return false
	}
	if !ValidStart(iv.Start) {
		s.reject(iv, metrics.AddResultInvalidStart, "start year out of range")
		return false
	}
	if iv.Start < s.clock.Now().Unix() {
		s.reject(iv, metrics.AddResultPast, "start is in the past")
		return false
	}
	if err := s.index.Insert(iv); err != nil {
		result := metrics.AddResultOverlap
		if errors.Is(err, ErrDuplicate) {
			result = metrics.AddResultDuplicate
		}
		s.reject(iv, result, err.Error())
		return false
	}

	metrics.IncRecordingAdd(metrics.AddResultAdded)
	s.logger.Info().
		Str(log.FieldEvent, "recording.added").
		Str(log.FieldChannelID, iv.ChannelID).
		Str(log.FieldStart, FormatStart(iv.Start)).
		Int64(log.FieldDuration, iv.Duration).
		Msg("recording scheduled")

	s.persistLocked(ctx)
	return true
}

// AddProgram schedules p using its channel, start and length.
func (s *Scheduler) AddProgram(ctx context.Context, p Program) bool {
	return s.AddRecord(ctx, p.ChannelID(), p.StartTime(), int64(p.LengthMinutes())*60)
}

// RemoveRecord deletes the recording keyed by (channelID, start). Removing an
// unknown recording is a no-op.
func (s *Scheduler) RemoveRecord(ctx context.Context, channelID string, start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.index.Remove(channelID, start.Unix()) {
		return
	}
	metrics.IncRecordingRemove()
	s.logger.Info().
		Str(log.FieldEvent, "recording.removed").
		Str(log.FieldChannelID, channelID).
		Str(log.FieldStart, FormatStart(start.Unix())).
		Msg("recording removed")
	s.persistLocked(ctx)
}

// RecordsByDayOffset returns the recordings starting on the UTC calendar day
// offsetDays away from today.
func (s *Scheduler) RecordsByDayOffset(offsetDays int) []Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.clock.Now().UTC().AddDate(0, 0, offsetDays)
	return s.index.OnDay(day)
}

// IsProgramRecorded reports whether a recording starts exactly at p's start on p's channel.
func (s *Scheduler) IsProgramRecorded(p Program) bool {
	return s.IsScheduled(p.ChannelID(), p.StartTime())
}

// IsScheduled reports whether a recording is keyed by (channelID, start).
func (s *Scheduler) IsScheduled(channelID string, start time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Contains(channelID, start.Unix())
}

// Records returns every recording held in memory, including expired ones that
// have not yet been pruned by a save.
func (s *Scheduler) Records() []Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.All()
}

func (s *Scheduler) reject(iv Interval, result, reason string) {
	metrics.IncRecordingAdd(result)
	s.logger.Warn().
		Str(log.FieldEvent, "recording.rejected").
		Str(log.FieldChannelID, iv.ChannelID).
		Str(log.FieldStart, FormatStart(iv.Start)).
		Int64(log.FieldDuration, iv.Duration).
		Str(log.FieldReason, reason).
		Msg("recording rejected")
}

// persistLocked writes the non-expired recordings back to the store. A failed
// write is logged and counted; the in-memory change stands.
func (s *Scheduler) persistLocked(ctx context.Context) {
	all := s.index.All()
	metrics.SetRecords(len(all))

	encoded := Encode(all, s.clock.Now().Unix(), s.expireHours)

	ctx, span := s.tracer.Start(ctx, "dvr.persist")
	defer span.End()
	span.SetAttributes(telemetry.StorageAttributes(s.key, len(encoded), len(all))...)

	if err := s.store.Put(ctx, s.key, encoded); err != nil {
		metrics.IncPersistError()
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		span.SetAttributes(telemetry.ErrorAttributes("persist")...)
		logger := log.WithContext(ctx, s.logger)
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "recording.persist_failed").
			Str(log.FieldKey, s.key).
			Msg("failed to persist recordings")
	}
}
