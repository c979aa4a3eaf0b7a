package devicelogin

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `user_id, name, email, device_id, login_status, ip_address, location, isp, created_at`

// Repository reads the device_login table through a shared connection pool.
// It never writes; the login pipeline owns the table's write path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a device login repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Count returns the number of rows visible under the scope.
func (r *Repository) Count(ctx context.Context, scope Scope) (int, error) {
	if r == nil || r.pool == nil {
		return 0, fmt.Errorf("devicelogin: repository not initialised")
	}
	where, args := scopeWhere(scope)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM device_login`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("devicelogin: count: %w", err)
	}
	return int(total), nil
}

// Fetch returns one page of rows visible under the scope, newest first.
func (r *Repository) Fetch(ctx context.Context, scope Scope, limit, offset int) ([]LoginRecord, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("devicelogin: repository not initialised")
	}
	where, args := scopeWhere(scope)
	query := fmt.Sprintf(`SELECT %s FROM device_login%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		recordColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("devicelogin: fetch: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// FetchAll returns every row visible under the scope, newest first. Used by
// the export endpoints which ignore pagination.
func (r *Repository) FetchAll(ctx context.Context, scope Scope) ([]LoginRecord, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("devicelogin: repository not initialised")
	}
	where, args := scopeWhere(scope)
	query := fmt.Sprintf(`SELECT %s FROM device_login%s ORDER BY created_at DESC`, recordColumns, where)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("devicelogin: fetch all: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]LoginRecord, error) {
	var records []LoginRecord
	for rows.Next() {
		var rec LoginRecord
		if err := rows.Scan(&rec.UserID, &rec.Name, &rec.Email, &rec.DeviceID,
			&rec.LoginStatus, &rec.IPAddress, &rec.Location, &rec.ISP, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("devicelogin: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("devicelogin: rows: %w", err)
	}
	return records, nil
}

// scopeWhere builds the WHERE clause and positional arguments for a scope.
// Filter values travel as bound parameters only; the LIKE pattern is composed
// here rather than in SQL so the statement shape is fixed per scope.
func scopeWhere(s Scope) (string, []any) {
	var conds []string
	var args []any
	if s.Kind == ScopeUser {
		args = append(args, s.ActorID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if s.Filtered {
		args = append(args, "%"+s.Name+"%")
		conds = append(conds, fmt.Sprintf("name LIKE $%d", len(args)))
		args = append(args, s.StartDate, s.EndDate)
		conds = append(conds, fmt.Sprintf("created_at BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
