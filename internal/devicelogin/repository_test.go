package devicelogin

import "testing"

func TestScopeWhereUserUnfiltered(t *testing.T) {
	where, args := scopeWhere(Scope{Kind: ScopeUser, ActorID: "u-1"})
	if where != " WHERE user_id = $1" {
		t.Fatalf("unexpected where: %q", where)
	}
	if len(args) != 1 || args[0] != "u-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestScopeWhereAdminUnfiltered(t *testing.T) {
	where, args := scopeWhere(Scope{Kind: ScopeAdmin})
	if where != "" || args != nil {
		t.Fatalf("expected empty predicate, got %q %v", where, args)
	}
}

func TestScopeWhereAdminFiltered(t *testing.T) {
	where, args := scopeWhere(Scope{
		Kind:      ScopeAdmin,
		Filtered:  true,
		Name:      "ann",
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-01-31T23:59:59Z",
	})
	want := " WHERE name LIKE $1 AND created_at BETWEEN $2 AND $3"
	if where != want {
		t.Fatalf("unexpected where: %q", where)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %v", args)
	}
	if args[0] != "%ann%" {
		t.Fatalf("expected substring pattern, got %v", args[0])
	}
}

func TestScopeWhereUserFiltered(t *testing.T) {
	where, args := scopeWhere(Scope{
		Kind:      ScopeUser,
		Filtered:  true,
		ActorID:   "u-1",
		Name:      "ann",
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-01-31T23:59:59Z",
	})
	want := " WHERE user_id = $1 AND name LIKE $2 AND created_at BETWEEN $3 AND $4"
	if where != want {
		t.Fatalf("unexpected where: %q", where)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %v", args)
	}
}

// Filter text must never alter statement shape: it only ever travels as a
// bound argument, even when it contains SQL metacharacters.
func TestScopeWhereHostileFilterText(t *testing.T) {
	hostile := "'; DROP TABLE device_login; --"
	where, args := scopeWhere(Scope{
		Kind:      ScopeAdmin,
		Filtered:  true,
		Name:      hostile,
		StartDate: "a' OR '1'='1",
		EndDate:   "z",
	})
	want := " WHERE name LIKE $1 AND created_at BETWEEN $2 AND $3"
	if where != want {
		t.Fatalf("statement shape changed: %q", where)
	}
	if args[0] != "%"+hostile+"%" {
		t.Fatalf("hostile text mangled: %v", args[0])
	}
}
