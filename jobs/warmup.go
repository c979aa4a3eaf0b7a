package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/enzoweb/timekeeper/internal/devicelogin"
)

var defaultJobMetrics = NewMetrics(nil)

// TimekeepingWarmupJob pre-populates the count cache for the admin-wide scope
// and the most active users, so dashboard loads after a cache flush stay fast.
type TimekeepingWarmupJob struct {
	Logins  *devicelogin.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *Metrics
}

// NewTimekeepingWarmupJob wires dependencies for the warmup handler.
func NewTimekeepingWarmupJob(logins *devicelogin.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *Metrics) *TimekeepingWarmupJob {
	return &TimekeepingWarmupJob{Logins: logins, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes warmup tasks.
func (j *TimekeepingWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("timekeeping warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := validate.Struct(payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.TopUsers == 0 {
		payload.TopUsers = defaultWarmupUsers
	}

	tracker := j.metrics().Track(TaskTimekeepingWarmup)
	return tracker.End(j.run(ctx, payload))
}

func (j *TimekeepingWarmupJob) run(ctx context.Context, payload WarmupPayload) error {
	logger := j.logger()
	started := time.Now()
	logger.Info("starting timekeeping warmup", slog.Int("top_users", payload.TopUsers))

	userIDs, err := j.activeUsers(ctx, payload.TopUsers)
	if err != nil {
		logger.Error("load warmup users", slog.Any("error", err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() error {
		return j.warmScope(gctx, devicelogin.Scope{Kind: devicelogin.ScopeAdmin})
	})
	for _, id := range userIDs {
		g.Go(func() error {
			return j.warmScope(gctx, devicelogin.Scope{Kind: devicelogin.ScopeUser, ActorID: id})
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("timekeeping warmup", slog.Any("error", err))
		return err
	}

	logger.Info("completed timekeeping warmup",
		slog.Int("users", len(userIDs)),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *TimekeepingWarmupJob) warmScope(ctx context.Context, scope devicelogin.Scope) error {
	if j.Logins == nil {
		return nil
	}
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	return j.Logins.WarmCount(scopeCtx, scope)
}

func (j *TimekeepingWarmupJob) activeUsers(ctx context.Context, limit int) ([]string, error) {
	if j.Pool == nil {
		return nil, errors.New("timekeeping warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT user_id FROM device_login GROUP BY user_id ORDER BY COUNT(*) DESC, MAX(created_at) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (j *TimekeepingWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTimekeepingWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTimekeepingWarmup))
}

func (j *TimekeepingWarmupJob) metrics() *Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
