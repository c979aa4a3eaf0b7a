package deviceloginhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/enzoweb/timekeeper/internal/devicelogin"
	"github.com/enzoweb/timekeeper/internal/shared"
	"github.com/enzoweb/timekeeper/internal/view"
)

type stubService struct {
	result     devicelogin.PageResult
	exportRows []devicelogin.LoginRecord
	err        error
	lastParams devicelogin.Params
}

func (s *stubService) Dashboard(ctx context.Context, params devicelogin.Params) (devicelogin.PageResult, error) {
	s.lastParams = params
	if s.err != nil {
		return devicelogin.PageResult{}, s.err
	}
	return s.result, nil
}

func (s *stubService) Export(ctx context.Context, params devicelogin.Params) ([]devicelogin.LoginRecord, devicelogin.Scope, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, devicelogin.Scope{}, s.err
	}
	scope, err := devicelogin.SelectScope(params)
	if err != nil {
		return nil, devicelogin.Scope{}, err
	}
	return s.exportRows, scope, nil
}

type stubPDF struct{}

func (stubPDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 mock"), nil
}

func newTestHandler(t *testing.T, service *stubService) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return NewHandler(nil, service, templates, stubPDF{})
}

func TestDashboardWithoutQueryString(t *testing.T) {
	handler := newTestHandler(t, &stubService{})
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No parameters given.") {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestDashboardWithoutUserID(t *testing.T) {
	handler := newTestHandler(t, &stubService{})
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping?page=2", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No parameters given.") {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestDashboardInvalidInput(t *testing.T) {
	service := &stubService{err: devicelogin.ErrInvalidInput}
	handler := newTestHandler(t, service)
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping?user_id=u-1&name=ann", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid input") {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestDashboardRendersRecords(t *testing.T) {
	service := &stubService{
		result: devicelogin.PageResult{
			Records: []devicelogin.LoginRecord{{
				UserID:      "u-1",
				Name:        "Anna Lee",
				Email:       "anna@example.com",
				DeviceID:    "dev-1",
				LoginStatus: "success",
				IPAddress:   "203.0.113.7",
				Location:    "Singapore",
				ISP:         "ExampleNet",
				CreatedAt:   "2024-06-15 18:00:00.500+08:00",
			}},
			Paging: shared.NewPagination(1, 20, 1),
			Scope:  devicelogin.Scope{Kind: devicelogin.ScopeUser, ActorID: "u-1"},
		},
	}
	handler := newTestHandler(t, service)
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping?user_id=u-1&page=1", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Anna Lee", "dev-1", "2024-06-15 18:00:00.500+08:00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
	if service.lastParams.Page != 1 {
		t.Fatalf("expected page forwarded, got %d", service.lastParams.Page)
	}
}

func TestDashboardEchoesFilters(t *testing.T) {
	service := &stubService{
		result: devicelogin.PageResult{
			Paging: shared.NewPagination(1, 20, 0),
			Scope: devicelogin.Scope{
				Kind:      devicelogin.ScopeAdmin,
				Filtered:  true,
				ActorID:   "u-1",
				Name:      "ann",
				StartDate: "2024-01-01T00:00:00Z",
				EndDate:   "2024-01-31T23:59:59Z",
			},
		},
	}
	handler := newTestHandler(t, service)
	target := "/external/timekeeping?user_id=u-1&is_admin=true&name=ann&start_date=2024-01-01T00:00:00Z&end_date=2024-01-31T23:59:59Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="ann"`) {
		t.Fatal("filter form not re-populated")
	}
}

func TestExportCSV(t *testing.T) {
	service := &stubService{
		exportRows: []devicelogin.LoginRecord{{UserID: "u-1", Name: "Anna Lee", CreatedAt: "2024-06-15 18:00:00.500+08:00"}},
	}
	handler := newTestHandler(t, service)
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping/export.csv?user_id=u-1&is_admin=true", nil)
	rr := httptest.NewRecorder()
	handler.handleExportCSV(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "Anna Lee") {
		t.Fatal("csv missing record")
	}
}

func TestExportRejectsMalformedDates(t *testing.T) {
	handler := newTestHandler(t, &stubService{})
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping/export.csv?user_id=u-1&is_admin=true&name=ann&start_date=January&end_date=2024-01-31T23:59:59Z", nil)
	rr := httptest.NewRecorder()
	handler.handleExportCSV(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected problem+json response, got %q", ct)
	}
}

func TestExportMissingUserID(t *testing.T) {
	handler := newTestHandler(t, &stubService{})
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping/export.csv?is_admin=true", nil)
	rr := httptest.NewRecorder()
	handler.handleExportCSV(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestExportPDF(t *testing.T) {
	service := &stubService{
		exportRows: []devicelogin.LoginRecord{{UserID: "u-1", Name: "Anna Lee", CreatedAt: "2024-06-15 18:00:00.500+08:00"}},
	}
	handler := newTestHandler(t, service)
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping/export.pdf?user_id=u-1&is_admin=true", nil)
	rr := httptest.NewRecorder()
	handler.handleExportPDF(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestDashboardServerError(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	handler := newTestHandler(t, service)
	req := httptest.NewRequest(http.MethodGet, "/external/timekeeping?user_id=u-1", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
