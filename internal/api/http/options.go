package http

import (
	"context"
	"net/http"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/quiz"
)

// OptionWriter is satisfied by *quiz.OptionService.
type OptionWriter interface {
	Create(ctx context.Context, n quiz.NewOption) (quiz.Option, error)
	Update(ctx context.Context, id int64, u quiz.OptionUpdate) (quiz.Option, error)
	Delete(ctx context.Context, id int64) error
}

// POST /options {"question_id": 1, "label": "A", "text": "...", "is_correct": true}
func CreateOptionHandler(svc OptionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			QuestionID jsonID  `json:"question_id"`
			Label      *string `json:"label"`
			Text       string  `json:"text"`
			IsCorrect  bool    `json:"is_correct"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		o, err := svc.Create(r.Context(), quiz.NewOption{
			QuestionID: int64(in.QuestionID),
			Label:      in.Label,
			Text:       in.Text,
			IsCorrect:  in.IsCorrect,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusCreated, o)
	}
}

// PUT /options/{id} with any subset of label, text, is_correct.
func UpdateOptionHandler(svc OptionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var in quiz.OptionUpdate
		if !decodeJSON(w, r, &in) {
			return
		}
		o, err := svc.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, o)
	}
}

// DELETE /options/{id}
func DeleteOptionHandler(svc OptionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
