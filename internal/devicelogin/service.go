package devicelogin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/enzoweb/timekeeper/internal/shared"
)

// displayZone is the fixed offset every stored UTC timestamp is rendered in.
var displayZone = time.FixedZone("UTC+8", 8*60*60)

const displayLayout = "2006-01-02 15:04:05.000-07:00"

// Store is the read-only contract the service needs from the record store.
type Store interface {
	Count(ctx context.Context, scope Scope) (int, error)
	Fetch(ctx context.Context, scope Scope, limit, offset int) ([]LoginRecord, error)
	FetchAll(ctx context.Context, scope Scope) ([]LoginRecord, error)
}

// Service coordinates scope selection, counting, page clamping, fetching and
// timestamp normalisation for the timekeeping dashboard.
type Service struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs the dashboard service. The cache may be nil.
func NewService(store Store, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// Dashboard resolves the caller's visibility scope and returns one page of
// login records. Store failures degrade to an empty page rather than failing
// the request; only invalid parameters surface as errors.
func (s *Service) Dashboard(ctx context.Context, params Params) (PageResult, error) {
	if s == nil || s.store == nil {
		return PageResult{}, errors.New("devicelogin: store not configured")
	}
	scope, err := SelectScope(params)
	if err != nil {
		return PageResult{}, err
	}

	total := s.countDegraded(ctx, scope)
	page := params.Page
	if page < 1 {
		page = 1
	}
	paging := shared.NewPagination(page, shared.ItemsPerPage, total)

	records, err := s.store.Fetch(ctx, scope, paging.PerPage, paging.Offset())
	if err != nil {
		s.logDegraded("fetch", scope, err)
		records = nil
	}

	return PageResult{
		Records: s.normalizeTimestamps(records),
		Paging:  paging,
		Scope:   scope,
	}, nil
}

// Export resolves the scope and returns every visible record, normalised for
// display. Unlike Dashboard, a store failure here fails the call: an export
// silently missing rows is worse than no export.
func (s *Service) Export(ctx context.Context, params Params) ([]LoginRecord, Scope, error) {
	if s == nil || s.store == nil {
		return nil, Scope{}, errors.New("devicelogin: store not configured")
	}
	scope, err := SelectScope(params)
	if err != nil {
		return nil, Scope{}, err
	}
	records, err := s.store.FetchAll(ctx, scope)
	if err != nil {
		return nil, Scope{}, err
	}
	return s.normalizeTimestamps(records), scope, nil
}

// WarmCount pre-computes and caches the row count for a scope.
func (s *Service) WarmCount(ctx context.Context, scope Scope) error {
	if s == nil || s.store == nil {
		return errors.New("devicelogin: store not configured")
	}
	total, err := s.store.Count(ctx, scope)
	if err != nil {
		return err
	}
	return s.cache.Warm(ctx, scope, total)
}

func (s *Service) countDegraded(ctx context.Context, scope Scope) int {
	loader := func(ctx context.Context) (int, error) {
		return s.store.Count(ctx, scope)
	}
	total, err := s.cache.Count(ctx, scope, loader)
	if err != nil {
		s.logDegraded("count", scope, err)
		return 0
	}
	return total
}

// logDegraded records a failed store call that was masked with a zero/empty
// result, keeping the dashboard usable under partial backend failure.
func (s *Service) logDegraded(op string, scope Scope, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("scope", scope.Key()),
		slog.Any("error", err),
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		attrs = append(attrs, slog.String("pg_code", pgErr.Code))
	}
	s.logger.Error("device login store degraded", attrs...)
}

// normalizeTimestamps rewrites each record's stored UTC timestamp into the
// fixed display offset with millisecond precision. A malformed timestamp is a
// data integrity fault: the record is dropped from the page and logged, the
// rest of the page survives.
func (s *Service) normalizeTimestamps(records []LoginRecord) []LoginRecord {
	out := make([]LoginRecord, 0, len(records))
	for _, rec := range records {
		display, err := normalizeTimestamp(rec.CreatedAt)
		if err != nil {
			s.logger.Error("skipping record with malformed created_at",
				slog.String("user_id", rec.UserID),
				slog.String("device_id", rec.DeviceID),
				slog.Any("error", err))
			continue
		}
		rec.CreatedAt = display
		out = append(out, rec)
	}
	return out
}

func normalizeTimestamp(raw string) (string, error) {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", fmt.Errorf("devicelogin: parse created_at %q: %w", raw, err)
	}
	return ts.In(displayZone).Format(displayLayout), nil
}
