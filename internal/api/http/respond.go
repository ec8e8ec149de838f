package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/report"
	"github.com/mind-engage/skillcheck/internal/users"
)

func init() {
	// score_pct goes out as a JSON number
	decimal.MarshalJSONWithoutQuotes = true
}

const maxBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "bad json")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "bad "+name)
		return 0, false
	}
	return id, true
}

func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
	if err != nil || id <= 0 {
		envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, name+" required")
		return 0, false
	}
	return id, true
}

// jsonID accepts an identifier sent either as a JSON number or as a numeric
// string.
type jsonID int64

func (id *jsonID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = jsonID(v)
	return nil
}

// writeError maps domain errors to a status and an envelope kind. Anything
// unrecognised is logged and reported as internal.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrEmptySubmission):
		envelope.Fail(w, http.StatusBadRequest, envelope.KindEmptySubmission, "no answers submitted")
	case errors.Is(err, quiz.ErrSubmissionFailed):
		status := http.StatusInternalServerError
		if errors.Is(err, quiz.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		envelope.Fail(w, status, envelope.KindSubmissionFailed, "submission was not recorded")
	case errors.Is(err, quiz.ErrOptionEnforcementFailed):
		envelope.Fail(w, http.StatusInternalServerError, envelope.KindOptionEnforcementFailed, "option was not saved")
	case errors.Is(err, quiz.ErrInvalidInput), errors.Is(err, users.ErrInvalidInput):
		envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, err.Error())
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, report.ErrNotFound), errors.Is(err, users.ErrUserNotFound):
		envelope.Fail(w, http.StatusNotFound, envelope.KindNotFound, err.Error())
	case errors.Is(err, users.ErrEmailTaken):
		envelope.Fail(w, http.StatusBadRequest, envelope.KindConflict, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials):
		envelope.Fail(w, http.StatusUnauthorized, envelope.KindUnauthorized, err.Error())
	default:
		log.Printf("http: %v", err)
		envelope.Fail(w, http.StatusInternalServerError, envelope.KindInternal, "internal error")
	}
}
