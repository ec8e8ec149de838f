package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/rbac"
)

// GET /questions?skill_id=
func ListQuestionsHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skillID, ok := queryID(w, r, "skill_id")
		if !ok {
			return
		}
		list, err := cat.ListQuestions(r.Context(), skillID)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, list)
	}
}

type takerOption struct {
	ID         int64   `json:"id"`
	QuestionID int64   `json:"question_id"`
	Label      *string `json:"label"`
	Text       string  `json:"text"`
}

type takerQuestion struct {
	quiz.Question
	Options []takerOption `json:"options"`
}

// hideAnswers strips the correctness flag for quiz takers.
func hideAnswers(in []quiz.QuestionWithOptions) []takerQuestion {
	out := make([]takerQuestion, 0, len(in))
	for _, q := range in {
		tq := takerQuestion{Question: q.Question, Options: make([]takerOption, 0, len(q.Options))}
		for _, o := range q.Options {
			tq.Options = append(tq.Options, takerOption{ID: o.ID, QuestionID: o.QuestionID, Label: o.Label, Text: o.Text})
		}
		out = append(out, tq)
	}
	return out
}

// GET /questions/questionWithOptions?skill_id=
// Callers allowed to manage options see is_correct; everyone else does not.
func QuestionsWithOptionsHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skillID, ok := queryID(w, r, "skill_id")
		if !ok {
			return
		}
		list, err := cat.ListQuestionsWithOptions(r.Context(), skillID)
		if err != nil {
			writeError(w, err)
			return
		}
		if rbac.Can(r.Context(), rbac.PermOptionManage) {
			envelope.OK(w, http.StatusOK, list)
			return
		}
		envelope.OK(w, http.StatusOK, hideAnswers(list))
	}
}

// POST /questions {"text": "...", "skill_id": 1, "difficulty": "easy"}
func CreateQuestionHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.NewQuestion
		if !decodeJSON(w, r, &in) {
			return
		}
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" || in.SkillID <= 0 {
			envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "text and skill_id required")
			return
		}
		q, err := cat.CreateQuestion(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusCreated, q)
	}
}

// DELETE /questions/{id}
func DeleteQuestionHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := cat.DeleteQuestion(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
