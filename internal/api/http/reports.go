package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	auth "github.com/mind-engage/skillcheck/internal/auth/middleware"
	"github.com/mind-engage/skillcheck/internal/rbac"
	"github.com/mind-engage/skillcheck/internal/report"
)

type ReportReader interface {
	ByUser(ctx context.Context, userID string, w report.Window) (report.UserReport, error)
	All(ctx context.Context, w report.Window) ([]report.AdminRow, error)
	Attempt(ctx context.Context, id string) (report.AttemptDetail, error)
}

// OwnsUserParam reports whether {userID} is the caller.
func OwnsUserParam(r *http.Request) bool {
	sub := auth.SubjectFromContext(r.Context())
	return sub != "" && chi.URLParam(r, "userID") == sub
}

// GET /report/user/{userID}?filter=week|month
func UserReportHandler(rr ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := rr.ByUser(r.Context(), chi.URLParam(r, "userID"), report.ParseWindow(r.URL.Query().Get("filter")))
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, rep)
	}
}

// GET /report/all?filter=week|month
func AllReportsHandler(rr ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := rr.All(r.Context(), report.ParseWindow(r.URL.Query().Get("filter")))
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, rows)
	}
}

// GET /report/attempt/{attemptID}
// Callers without report:view-all only see their own attempts; anyone
// else's attempt is reported as missing.
func AttemptReportHandler(rr ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := rr.Attempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !rbac.Can(r.Context(), rbac.PermReportViewAll) && d.UserID != auth.SubjectFromContext(r.Context()) {
			writeError(w, report.ErrNotFound)
			return
		}
		envelope.OK(w, http.StatusOK, d)
	}
}
