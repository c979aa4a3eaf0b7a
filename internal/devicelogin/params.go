package devicelogin

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrMissingParameters indicates the request carried no query input at all or
// omitted the required user_id.
var ErrMissingParameters = errors.New("devicelogin: missing parameters")

// ErrInvalidInput indicates a non-admin caller supplied only part of the
// name/start_date/end_date filter triple.
var ErrInvalidInput = errors.New("devicelogin: invalid input")

// Params holds the normalised query parameters for one dashboard request.
// Page is zero when the caller did not ask for a specific page.
type Params struct {
	UserID    string
	IsAdmin   bool
	Name      string
	StartDate string
	EndDate   string
	Page      int
}

// ParseParams normalises raw query values into Params. Both closed
// normalisations never fail: is_admin is true only for the literal string
// "true" in any casing, and an unparseable or non-positive page collapses
// to 1. Unknown keys are ignored.
func ParseParams(values url.Values) (Params, error) {
	if len(values) == 0 {
		return Params{}, ErrMissingParameters
	}
	userID := strings.TrimSpace(values.Get("user_id"))
	if userID == "" {
		return Params{}, ErrMissingParameters
	}
	return Params{
		UserID:    userID,
		IsAdmin:   normalizeAdminFlag(values.Get("is_admin")),
		Name:      values.Get("name"),
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
		Page:      normalizePage(values),
	}, nil
}

func normalizeAdminFlag(raw string) bool {
	return strings.EqualFold(raw, "true")
}

func normalizePage(values url.Values) int {
	if !values.Has("page") {
		return 0
	}
	n, err := strconv.ParseInt(values.Get("page"), 10, 64)
	if err != nil || n < 1 {
		return 1
	}
	return int(n)
}

// SelectScope picks the visibility scope for the given parameters. Selection
// depends only on the admin flag and whether the filter triple is jointly
// present: a partial triple is ignored for admins and rejected with
// ErrInvalidInput for everyone else.
func SelectScope(p Params) (Scope, error) {
	present := 0
	for _, v := range []string{p.Name, p.StartDate, p.EndDate} {
		if v != "" {
			present++
		}
	}
	kind := ScopeUser
	if p.IsAdmin {
		kind = ScopeAdmin
	}
	scope := Scope{Kind: kind, ActorID: p.UserID}
	switch {
	case present == 3:
		scope.Filtered = true
		scope.Name = p.Name
		scope.StartDate = p.StartDate
		scope.EndDate = p.EndDate
	case present > 0 && !p.IsAdmin:
		return Scope{}, ErrInvalidInput
	}
	return scope, nil
}
