package devicelogin

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseParamsRejectsEmptyQuery(t *testing.T) {
	_, err := ParseParams(url.Values{})
	if !errors.Is(err, ErrMissingParameters) {
		t.Fatalf("expected ErrMissingParameters, got %v", err)
	}
}

func TestParseParamsRejectsMissingUserID(t *testing.T) {
	values := url.Values{"page": {"2"}, "is_admin": {"true"}}
	_, err := ParseParams(values)
	if !errors.Is(err, ErrMissingParameters) {
		t.Fatalf("expected ErrMissingParameters, got %v", err)
	}
}

func TestParseParamsIgnoresUnknownKeys(t *testing.T) {
	values := url.Values{"user_id": {"u-1"}, "sort": {"asc"}, "theme": {"dark"}}
	p, err := ParseParams(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.UserID != "u-1" {
		t.Fatalf("expected user id u-1, got %q", p.UserID)
	}
}

func TestNormalizeAdminFlag(t *testing.T) {
	cases := map[string]bool{
		"true":     true,
		"TRUE":     true,
		"True":     true,
		"false":    false,
		"yes":      false,
		"1":        false,
		"":         false,
		" true":    false,
		"truthful": false,
	}
	for raw, want := range cases {
		values := url.Values{"user_id": {"u-1"}, "is_admin": {raw}}
		p, err := ParseParams(values)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if p.IsAdmin != want {
			t.Fatalf("is_admin=%q: expected %v, got %v", raw, want, p.IsAdmin)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	cases := map[string]int{
		"3":    3,
		"1":    1,
		"0":    1,
		"-5":   1,
		"abc":  1,
		"":     1,
		"2.5":  1,
		"9999": 9999,
	}
	for raw, want := range cases {
		values := url.Values{"user_id": {"u-1"}, "page": {raw}}
		p, err := ParseParams(values)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if p.Page != want {
			t.Fatalf("page=%q: expected %d, got %d", raw, want, p.Page)
		}
	}
}

func TestNormalizePageAbsent(t *testing.T) {
	p, err := ParseParams(url.Values{"user_id": {"u-1"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Page != 0 {
		t.Fatalf("expected unset page 0, got %d", p.Page)
	}
}
