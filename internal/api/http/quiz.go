package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	auth "github.com/mind-engage/skillcheck/internal/auth/middleware"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/rbac"
)

type Submitter interface {
	Submit(ctx context.Context, sub quiz.Submission) (quiz.Result, error)
}

type submitReq struct {
	UserID  string             `json:"user_id"`
	QuizID  *jsonID            `json:"quiz_id"`
	SkillID *jsonID            `json:"skill_id"` // older clients
	Answers map[string]*jsonID `json:"answers"`
}

// POST /quiz/submit {"quiz_id": 1, "answers": {"10": 41, "11": null}}
//
// The attempt belongs to the session subject. A body user_id naming someone
// else is only honoured for callers that may read all reports.
func SubmitQuizHandler(eng Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if !decodeJSON(w, r, &req) {
			return
		}

		userID := auth.SubjectFromContext(r.Context())
		if u := strings.TrimSpace(req.UserID); u != "" && u != userID {
			if !rbac.Can(r.Context(), rbac.PermReportViewAll) {
				envelope.Fail(w, http.StatusForbidden, envelope.KindForbidden, "cannot submit for another user")
				return
			}
			userID = u
		}

		quizID := req.QuizID
		if quizID == nil {
			quizID = req.SkillID
		}
		if quizID == nil || *quizID <= 0 {
			envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "quiz_id required")
			return
		}

		answers := make(map[int64]*int64, len(req.Answers))
		for k, v := range req.Answers {
			qid, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
			if err != nil || qid <= 0 {
				envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "bad question id "+strconv.Quote(k))
				return
			}
			if v == nil {
				answers[qid] = nil
				continue
			}
			sel := int64(*v)
			answers[qid] = &sel
		}

		res, err := eng.Submit(r.Context(), quiz.Submission{UserID: userID, QuizID: int64(*quizID), Answers: answers})
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, res)
	}
}
