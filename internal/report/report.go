// Package report reads stored attempts back for users and admins. Everything
// here is a view over what the submission engine persisted; nothing is
// regraded.
package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/skillcheck/internal/quiz"
)

var ErrNotFound = errors.New("attempt not found")

// Window limits reports to attempts started within a trailing period.
type Window string

const (
	WindowAll   Window = ""
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow maps the filter query value; anything unknown means all time.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowWeek:
		return WindowWeek
	case WindowMonth:
		return WindowMonth
	}
	return WindowAll
}

// cutoff returns the lowest started_at (unix seconds) the window admits.
func (w Window) cutoff(now time.Time) int64 {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7).Unix()
	case WindowMonth:
		return now.AddDate(0, -1, 0).Unix()
	}
	return 0
}

type AttemptReport struct {
	quiz.Attempt
	Answers []quiz.Answer `json:"answers"`
}

type UserReport struct {
	UserID   string          `json:"user_id"`
	Attempts []AttemptReport `json:"attempts"`
}

// AdminRow is one attempt in the all-users listing. Email is nil when the
// user record no longer exists.
type AdminRow struct {
	quiz.Attempt
	Email *string `json:"email"`
}

type QuestionDetail struct {
	QuestionID       int64         `json:"question_id"`
	Text             *string       `json:"text"`
	SelectedOptionID *int64        `json:"selected_option_id"`
	IsCorrect        bool          `json:"is_correct"`
	AnsweredAt       time.Time     `json:"answered_at"`
	Options          []quiz.Option `json:"options"`
}

type AttemptDetail struct {
	quiz.Attempt
	Questions []QuestionDetail `json:"questions"`
}

type Reader struct {
	db  *sql.DB
	now func() time.Time
}

func NewReader(db *sql.DB, now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{db: db, now: now}
}

// ByUser returns the user's attempts, newest first, each with its answers.
func (r *Reader) ByUser(ctx context.Context, userID string, w Window) (UserReport, error) {
	since := w.cutoff(r.now())
	rep := UserReport{UserID: userID, Attempts: []AttemptReport{}}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, quiz_id, started_at, completed_at, score_pct
		   FROM quiz_attempts
		  WHERE user_id=$1 AND started_at >= $2
		  ORDER BY started_at DESC, id`, userID, since)
	if err != nil {
		return rep, err
	}
	idx := map[string]int{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			rows.Close()
			return rep, err
		}
		idx[a.ID] = len(rep.Attempts)
		rep.Attempts = append(rep.Attempts, AttemptReport{Attempt: a, Answers: []quiz.Answer{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rep, err
	}
	if len(rep.Attempts) == 0 {
		return rep, nil
	}

	ans, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.attempt_id, a.question_id, a.selected_option_id, a.is_correct, a.answered_at
		   FROM quiz_answers a
		   JOIN quiz_attempts t ON t.id = a.attempt_id
		  WHERE t.user_id=$1 AND t.started_at >= $2
		  ORDER BY a.attempt_id, a.question_id`, userID, since)
	if err != nil {
		return rep, err
	}
	defer ans.Close()
	for ans.Next() {
		var (
			a  quiz.Answer
			ts int64
		)
		if err := ans.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.SelectedOptionID, &a.IsCorrect, &ts); err != nil {
			return rep, err
		}
		a.AnsweredAt = time.Unix(ts, 0).UTC()
		if i, ok := idx[a.AttemptID]; ok {
			rep.Attempts[i].Answers = append(rep.Attempts[i].Answers, a)
		}
	}
	return rep, ans.Err()
}

// All lists every attempt, newest first, with the owner's email.
func (r *Reader) All(ctx context.Context, w Window) ([]AdminRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.quiz_id, t.started_at, t.completed_at, t.score_pct, u.email
		   FROM quiz_attempts t
		   LEFT JOIN users u ON u.id = t.user_id
		  WHERE t.started_at >= $1
		  ORDER BY t.started_at DESC, t.id`, w.cutoff(r.now()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AdminRow{}
	for rows.Next() {
		var row AdminRow
		a, err := scanAttempt(rows, &row.Email)
		if err != nil {
			return nil, err
		}
		row.Attempt = a
		out = append(out, row)
	}
	return out, rows.Err()
}

// Attempt returns one attempt with, per answered question, the stored result
// and the question's current options.
func (r *Reader) Attempt(ctx context.Context, id string) (AttemptDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, quiz_id, started_at, completed_at, score_pct
		   FROM quiz_attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AttemptDetail{}, ErrNotFound
	}
	if err != nil {
		return AttemptDetail{}, err
	}
	d := AttemptDetail{Attempt: a, Questions: []QuestionDetail{}}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.question_id, q.text, a.selected_option_id, a.is_correct, a.answered_at,
		        o.id, o.label, o.text, o.is_correct
		   FROM quiz_answers a
		   LEFT JOIN questions q ON q.id = a.question_id
		   LEFT JOIN question_options o ON o.question_id = a.question_id
		  WHERE a.attempt_id=$1
		  ORDER BY a.question_id, o.label, o.id`, id)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	idx := map[int64]int{}
	for rows.Next() {
		var (
			qd      QuestionDetail
			ts      int64
			optID   sql.NullInt64
			optLbl  *string
			optText sql.NullString
			optOK   sql.NullBool
		)
		if err := rows.Scan(&qd.QuestionID, &qd.Text, &qd.SelectedOptionID, &qd.IsCorrect, &ts,
			&optID, &optLbl, &optText, &optOK); err != nil {
			return d, err
		}
		i, ok := idx[qd.QuestionID]
		if !ok {
			qd.AnsweredAt = time.Unix(ts, 0).UTC()
			qd.Options = []quiz.Option{}
			d.Questions = append(d.Questions, qd)
			i = len(d.Questions) - 1
			idx[qd.QuestionID] = i
		}
		if optID.Valid {
			d.Questions[i].Options = append(d.Questions[i].Options, quiz.Option{
				ID: optID.Int64, QuestionID: qd.QuestionID, Label: optLbl, Text: optText.String, IsCorrect: optOK.Bool,
			})
		}
	}
	return d, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner, extra ...any) (quiz.Attempt, error) {
	var (
		a         quiz.Attempt
		started   int64
		completed sql.NullInt64
		score     decimal.Decimal
	)
	dest := append([]any{&a.ID, &a.UserID, &a.QuizID, &started, &completed, &score}, extra...)
	if err := s.Scan(dest...); err != nil {
		return quiz.Attempt{}, err
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	a.CompletedAt = a.StartedAt
	if completed.Valid {
		a.CompletedAt = time.Unix(completed.Int64, 0).UTC()
	}
	a.ScorePct = score.Round(2)
	return a, nil
}
