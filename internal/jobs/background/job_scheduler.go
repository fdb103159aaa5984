package background

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"saveeat/internal/caching"
	"saveeat/internal/config"
	"saveeat/internal/models"
	"saveeat/internal/services"
	"saveeat/internal/telemetry"
	"saveeat/internal/viewengine"
)

const (
	dailySweepJob    = "expiry-digest-daily"
	intervalSweepJob = "expiry-digest-interval"

	// markers outlive the day they cover so late sweeps still see them
	markerTTL = 36 * time.Hour
)

// Notifier is the part of the push service the sweep needs
type Notifier interface {
	Recipients(ctx context.Context) ([]uuid.UUID, error)
	SendDigest(ctx context.Context, userID uuid.UUID, days int, now time.Time) (models.PushResult, error)
}

// JobScheduler runs the expiry digest sweep on a schedule
type JobScheduler struct {
	scheduler gocron.Scheduler
	notifier  Notifier
	cache     caching.CacheService
	days      int
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers the sweeps enabled in cfg
func NewJobScheduler(notifier Notifier, cache caching.CacheService, cfg config.PushConfig, logger *zap.Logger) (*JobScheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("invalid push timezone %q: %w", cfg.Timezone, err)
		}
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(gocronLogger{logger.Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	days := cfg.DefaultDays
	if days < 1 {
		days = 3
	}
	js := &JobScheduler{
		scheduler: scheduler,
		notifier:  notifier,
		cache:     cache,
		days:      days,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs(cfg config.PushConfig) error {
	if cfg.DailyAt != "" {
		hour, minute, err := parseClock(cfg.DailyAt)
		if err != nil {
			return err
		}
		if err := js.addJob(dailySweepJob,
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0)))); err != nil {
			return err
		}
	}
	if cfg.SweepInterval > 0 {
		if err := js.addJob(intervalSweepJob, gocron.DurationJob(cfg.SweepInterval)); err != nil {
			return err
		}
	}

	js.logger.Info("registered background jobs", zap.Strings("jobs", js.Jobs()))
	return nil
}

func (js *JobScheduler) addJob(name string, def gocron.JobDefinition) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		def,
		gocron.NewTask(js.runSweep, name),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	js.jobs[name] = job
	return nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// Jobs returns the registered job names
func (js *JobScheduler) Jobs() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (js *JobScheduler) runSweep(name string) {
	start := time.Now()
	res, err := js.Sweep(context.Background())
	if err != nil {
		js.logger.Error("expiry sweep failed", zap.String("job", name), zap.Error(err))
		return
	}
	js.logger.Info("expiry sweep completed",
		zap.String("job", name),
		zap.Int("sent", res.Sent),
		zap.Int("removed", res.Removed),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)))
}

// Sweep sends the expiry digest to every subscribed user who has not been
// notified yet today. One user's failure is logged and skipped.
func (js *JobScheduler) Sweep(ctx context.Context) (total models.PushResult, err error) {
	now := js.now().In(js.loc)
	day := viewengine.FormatDate(viewengine.Today(now))

	ctx, span := telemetry.StartSpan(ctx, "expiry.sweep",
		attribute.String("sweep.day", day),
		attribute.Int("sweep.days", js.days))
	defer func() {
		span.SetAttributes(attribute.Int("push.sent", total.Sent), attribute.Int("push.removed", total.Removed))
		telemetry.EndSpan(span, err)
	}()

	users, err := js.notifier.Recipients(ctx)
	if err != nil {
		return total, err
	}

	for _, userID := range users {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		first, err := js.cache.MarkOnce(ctx, "digest:"+userID.String()+":"+day, markerTTL)
		if err != nil {
			js.logger.Warn("digest marker failed, sending anyway", zap.Stringer("user_id", userID), zap.Error(err))
		} else if !first {
			continue
		}

		res, err := js.notifier.SendDigest(ctx, userID, js.days, now)
		if err != nil {
			if errors.Is(err, services.ErrUnavailable) {
				return total, err
			}
			js.logger.Error("failed to send expiry digest", zap.Stringer("user_id", userID), zap.Error(err))
			continue
		}
		total.Add(res)
	}
	return total, nil
}

// parseClock reads an HH:MM wall clock time
func parseClock(s string) (uint, uint, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid daily time %q, want HH:MM", s)
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid daily time %q, want HH:MM", s)
	}
	return uint(hour), uint(minute), nil
}

// gocronLogger routes scheduler logs through zap
type gocronLogger struct {
	l *zap.SugaredLogger
}

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debugw(msg, args...) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Errorw(msg, args...) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Infow(msg, args...) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warnw(msg, args...) }
