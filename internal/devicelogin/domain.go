package devicelogin

import (
	"strconv"
	"strings"

	"github.com/enzoweb/timekeeper/internal/shared"
)

// LoginRecord is one row of the device_login audit table. Rows are written by
// the login pipeline and never mutated here; CreatedAt holds the stored
// ISO-8601 UTC text until the service rewrites it for display.
type LoginRecord struct {
	UserID      string
	Name        string
	Email       string
	DeviceID    string
	LoginStatus string
	IPAddress   string
	Location    string
	ISP         string
	CreatedAt   string
}

// ScopeKind distinguishes admin-wide visibility from per-user visibility.
type ScopeKind string

const (
	// ScopeAdmin sees every login record.
	ScopeAdmin ScopeKind = "admin"
	// ScopeUser sees only the actor's own records.
	ScopeUser ScopeKind = "user"
)

// Scope is the resolved visibility mode for one request: who may see which
// rows, plus the filter triple when filtering is active.
type Scope struct {
	Kind      ScopeKind
	Filtered  bool
	ActorID   string
	Name      string
	StartDate string
	EndDate   string
}

// Key returns a stable representation of the scope, used for cache keys and
// log attributes.
func (s Scope) Key() string {
	parts := []string{string(s.Kind), strconv.FormatBool(s.Filtered)}
	if s.Kind == ScopeUser {
		parts = append(parts, s.ActorID)
	}
	if s.Filtered {
		parts = append(parts, s.Name, s.StartDate, s.EndDate)
	}
	return strings.Join(parts, ":")
}

// PageResult is the outcome of one dashboard request: the resolved page of
// records plus pagination metadata and the scope that produced them.
type PageResult struct {
	Records []LoginRecord
	Paging  shared.Pagination
	Scope   Scope
}

// ViewModel carries a PageResult into the template layer. Filter fields echo
// the active filter values so forms re-populate, or empty strings when the
// scope was unfiltered.
type ViewModel struct {
	Records   []LoginRecord
	Paging    shared.Pagination
	UserID    string
	IsAdmin   bool
	Name      string
	StartDate string
	EndDate   string
}

// NewViewModel builds the template payload from a page result.
func NewViewModel(result PageResult) ViewModel {
	vm := ViewModel{
		Records: result.Records,
		Paging:  result.Paging,
		UserID:  result.Scope.ActorID,
		IsAdmin: result.Scope.Kind == ScopeAdmin,
	}
	if result.Scope.Filtered {
		vm.Name = result.Scope.Name
		vm.StartDate = result.Scope.StartDate
		vm.EndDate = result.Scope.EndDate
	}
	return vm
}
