package deviceloginhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/enzoweb/timekeeper/internal/devicelogin"
	"github.com/enzoweb/timekeeper/internal/platform/httpx"
	"github.com/enzoweb/timekeeper/internal/view"
)

// DashboardService defines the business contract for the timekeeping view.
type DashboardService interface {
	Dashboard(ctx context.Context, params devicelogin.Params) (devicelogin.PageResult, error)
	Export(ctx context.Context, params devicelogin.Params) ([]devicelogin.LoginRecord, devicelogin.Scope, error)
}

// PDFRenderer converts rendered HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler serves the timekeeping dashboard and its export endpoints.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	pdf       PDFRenderer
	validate  *validator.Validate
	flights   singleflight.Group
}

// NewHandler wires the timekeeping handler. The PDF renderer is optional.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		pdf:       pdf,
		validate:  validator.New(),
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if h.templates == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	if r.URL.RawQuery == "" {
		http.Error(w, "No parameters given.", http.StatusBadRequest)
		return
	}
	params, err := devicelogin.ParseParams(r.URL.Query())
	if err != nil {
		http.Error(w, "No parameters given.", http.StatusBadRequest)
		return
	}

	result, err := h.loadDashboard(r.Context(), params)
	if err != nil {
		if errors.Is(err, devicelogin.ErrInvalidInput) {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}
		h.handleServerError(w, "load timekeeping dashboard", err)
		return
	}

	data := view.TemplateData{
		Title:       "Timekeeping",
		CurrentPath: r.URL.Path,
		Data:        devicelogin.NewViewModel(result),
	}
	if err := h.templates.Render(w, "pages/timekeeping.html", data); err != nil {
		h.handleServerError(w, "render timekeeping dashboard", err)
	}
}

// loadDashboard collapses concurrent identical requests into one store
// round-trip. Identical parameters yield an identical point-in-time page, so
// sharing the result is safe.
func (h *Handler) loadDashboard(ctx context.Context, params devicelogin.Params) (devicelogin.PageResult, error) {
	key := fmt.Sprintf("%s|%t|%s|%s|%s|%d",
		params.UserID, params.IsAdmin, params.Name, params.StartDate, params.EndDate, params.Page)
	v, err, _ := h.flights.Do(key, func() (interface{}, error) {
		return h.service.Dashboard(ctx, params)
	})
	if err != nil {
		return devicelogin.PageResult{}, err
	}
	return v.(devicelogin.PageResult), nil
}

type exportQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.exportRecords(w, r)
	if !ok {
		return
	}
	csvBytes, err := devicelogin.WriteCSV(records)
	if err != nil {
		h.handleServerError(w, "encode csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="device-logins.csv"`)
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil || h.templates == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	records, scope, ok := h.exportRecords(w, r)
	if !ok {
		return
	}
	vm := devicelogin.NewViewModel(devicelogin.PageResult{Records: records, Scope: scope})
	var buf bytes.Buffer
	if err := h.templates.Execute(&buf, "pages/timekeeping_export.html", view.TemplateData{
		Title: "Device Login Report",
		Data:  vm,
	}); err != nil {
		h.handleServerError(w, "render export markup", err)
		return
	}
	pdfBytes, err := h.pdf.RenderHTML(r.Context(), buf.String())
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="device-logins.pdf"`)
	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.Warn("write pdf", slog.Any("error", err))
	}
}

// exportRecords parses and validates export parameters and loads the full
// visible record set. Export endpoints speak problem+json on failure since
// their success responses are file downloads, not HTML.
func (h *Handler) exportRecords(w http.ResponseWriter, r *http.Request) ([]devicelogin.LoginRecord, devicelogin.Scope, bool) {
	if h.service == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return nil, devicelogin.Scope{}, false
	}
	params, err := devicelogin.ParseParams(r.URL.Query())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Missing Parameters", "user_id is required")
		return nil, devicelogin.Scope{}, false
	}
	// Exports are stricter than the dashboard: a date filter must be a real
	// RFC3339 instant, not just a non-empty string.
	if err := h.validate.Struct(exportQuery{StartDate: params.StartDate, EndDate: params.EndDate}); err != nil {
		var fields []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fields = append(fields, fieldErr.Field())
			}
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", strings.Join(fields, ", "))
		return nil, devicelogin.Scope{}, false
	}
	records, scope, err := h.service.Export(r.Context(), params)
	if err != nil {
		if errors.Is(err, devicelogin.ErrInvalidInput) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "name, start_date and end_date must be supplied together")
			return nil, devicelogin.Scope{}, false
		}
		h.logger.Error("export device logins", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return nil, devicelogin.Scope{}, false
	}
	return records, scope, true
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	if h.logger != nil {
		h.logger.Error(message, slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
