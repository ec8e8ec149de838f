package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/skillcheck/internal/db"
	"github.com/mind-engage/skillcheck/internal/db/dbtest"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/report"
	"github.com/mind-engage/skillcheck/internal/users"
)

var now = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

type env struct {
	reader  *report.Reader
	store   *quiz.SQLStore
	options *quiz.OptionService
	userID  string
	q1, q2  quiz.Question
	a, b, c int64
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	h := dbtest.Open(t)
	st := quiz.NewSQLStore(h, db.DriverSQLite)
	e := &env{reader: report.NewReader(h, func() time.Time { return now }), store: st, options: quiz.NewOptionService(st, st)}

	u, err := users.NewStore(h, bcrypt.MinCost).Register(ctx, "learner@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	e.userID = u.ID

	sk, _ := st.CreateSkill(ctx, quiz.NewSkill{Name: "Go"})
	e.q1, _ = st.CreateQuestion(ctx, quiz.NewQuestion{Text: "Q1", SkillID: sk.ID})
	e.q2, _ = st.CreateQuestion(ctx, quiz.NewQuestion{Text: "Q2", SkillID: sk.ID})
	mk := func(qid int64, label string, correct bool) int64 {
		o, err := e.options.Create(ctx, quiz.NewOption{QuestionID: qid, Label: &label, Text: label, IsCorrect: correct})
		if err != nil {
			t.Fatal(err)
		}
		return o.ID
	}
	e.a = mk(e.q1.ID, "A", true)
	e.b = mk(e.q1.ID, "B", false)
	e.c = mk(e.q2.ID, "C", true)
	return e
}

func (e *env) submitAt(t *testing.T, at time.Time, userID string, answers map[int64]*int64) quiz.Result {
	t.Helper()
	eng := quiz.NewEngine(e.store, func() time.Time { return at })
	res, err := eng.Submit(context.Background(), quiz.Submission{UserID: userID, QuizID: e.q1.SkillID, Answers: answers})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func ptr(v int64) *int64 { return &v }

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]report.Window{
		"week": report.WindowWeek, "month": report.WindowMonth, "": report.WindowAll, "year": report.WindowAll,
	} {
		if got := report.ParseWindow(in); got != want {
			t.Errorf("ParseWindow(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestByUserWindows(t *testing.T) {
	e := setup(t)
	ans := map[int64]*int64{e.q1.ID: ptr(e.a)}
	for _, age := range []time.Duration{0, 10 * 24 * time.Hour, 20 * 24 * time.Hour, 40 * 24 * time.Hour} {
		e.submitAt(t, now.Add(-age), e.userID, ans)
	}
	e.submitAt(t, now, "someone-else", ans)

	cases := map[report.Window]int{report.WindowWeek: 1, report.WindowMonth: 3, report.WindowAll: 4}
	for w, want := range cases {
		rep, err := e.reader.ByUser(context.Background(), e.userID, w)
		if err != nil {
			t.Fatal(err)
		}
		if len(rep.Attempts) != want {
			t.Errorf("window %q: %d attempts, want %d", w, len(rep.Attempts), want)
		}
	}

	rep, _ := e.reader.ByUser(context.Background(), e.userID, report.WindowAll)
	for i := 1; i < len(rep.Attempts); i++ {
		if rep.Attempts[i].StartedAt.After(rep.Attempts[i-1].StartedAt) {
			t.Fatal("attempts not newest first")
		}
	}
	if len(rep.Attempts[0].Answers) != 1 || !rep.Attempts[0].Answers[0].IsCorrect {
		t.Fatalf("answers = %+v", rep.Attempts[0].Answers)
	}
}

func TestByUserEmpty(t *testing.T) {
	e := setup(t)
	rep, err := e.reader.ByUser(context.Background(), "nobody", report.WindowAll)
	if err != nil {
		t.Fatal(err)
	}
	if rep.UserID != "nobody" || rep.Attempts == nil || len(rep.Attempts) != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestAllIncludesEmail(t *testing.T) {
	e := setup(t)
	e.submitAt(t, now.Add(-time.Hour), e.userID, map[int64]*int64{e.q1.ID: ptr(e.b)})
	e.submitAt(t, now, "deleted-user", map[int64]*int64{e.q1.ID: ptr(e.a)})

	rows, err := e.reader.All(context.Background(), report.WindowAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].UserID != "deleted-user" || rows[0].Email != nil {
		t.Fatalf("newest row = %+v", rows[0])
	}
	if rows[1].Email == nil || *rows[1].Email != "learner@example.com" || rows[1].ScorePct.StringFixed(2) != "0.00" {
		t.Fatalf("learner row = %+v", rows[1])
	}
}

func TestAttemptDetail(t *testing.T) {
	e := setup(t)
	res := e.submitAt(t, now, e.userID, map[int64]*int64{e.q1.ID: ptr(e.b), e.q2.ID: nil})

	// correctness edits after grading show in the options but not in the stored result
	yes := true
	if _, err := e.options.Update(context.Background(), e.b, quiz.OptionUpdate{IsCorrect: &yes}); err != nil {
		t.Fatal(err)
	}

	d, err := e.reader.Attempt(context.Background(), res.AttemptID)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != res.AttemptID || d.UserID != e.userID || d.ScorePct.StringFixed(2) != "0.00" {
		t.Fatalf("attempt = %+v", d.Attempt)
	}
	if len(d.Questions) != 2 {
		t.Fatalf("questions = %+v", d.Questions)
	}
	q1 := d.Questions[0]
	if q1.QuestionID != e.q1.ID || *q1.Text != "Q1" || q1.IsCorrect || *q1.SelectedOptionID != e.b {
		t.Fatalf("q1 = %+v", q1)
	}
	if len(q1.Options) != 2 || *q1.Options[0].Label != "A" || q1.Options[0].IsCorrect || !q1.Options[1].IsCorrect {
		t.Fatalf("q1 options = %+v", q1.Options)
	}
	if q2 := d.Questions[1]; q2.SelectedOptionID != nil || q2.IsCorrect || len(q2.Options) != 1 {
		t.Fatalf("q2 = %+v", q2)
	}

	if _, err := e.reader.Attempt(context.Background(), "missing"); !errors.Is(err, report.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestAttemptDetailSurvivesDeletedQuestion(t *testing.T) {
	e := setup(t)
	res := e.submitAt(t, now, e.userID, map[int64]*int64{e.q1.ID: ptr(e.a)})
	if err := e.store.DeleteQuestion(context.Background(), e.q1.ID); err != nil {
		t.Fatal(err)
	}
	d, err := e.reader.Attempt(context.Background(), res.AttemptID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Questions) != 1 || d.Questions[0].Text != nil || len(d.Questions[0].Options) != 0 || !d.Questions[0].IsCorrect {
		t.Fatalf("detail = %+v", d.Questions)
	}
}
