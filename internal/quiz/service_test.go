package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/skillcheck/internal/quiz"
)

/* ---------------- in-memory fake satisfying quiz.TxRunner ---------------- */

type fakeStore struct {
	mu       sync.Mutex
	correct  map[int64]int64
	attempts []quiz.Attempt
	answers  []quiz.Answer
	events   []string

	failOracle  error
	failAnswers error
}

type fakeTx struct {
	s        *fakeStore
	attempts []quiz.Attempt
	answers  []quiz.Answer
	events   []string
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(quiz.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &fakeTx{s: s}
	if err := fn(tx); err != nil {
		return err // staged writes dropped
	}
	s.attempts = append(s.attempts, tx.attempts...)
	s.answers = append(s.answers, tx.answers...)
	s.events = append(s.events, tx.events...)
	return nil
}

func (t *fakeTx) CorrectOptions(_ context.Context, ids []int64) (map[int64]int64, error) {
	if t.s.failOracle != nil {
		return nil, t.s.failOracle
	}
	out := map[int64]int64{}
	for _, id := range ids {
		if c, ok := t.s.correct[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (t *fakeTx) InsertAttempt(_ context.Context, a quiz.Attempt) error {
	t.attempts = append(t.attempts, a)
	return nil
}

func (t *fakeTx) InsertAnswers(_ context.Context, a []quiz.Answer) error {
	if t.s.failAnswers != nil {
		return t.s.failAnswers
	}
	t.answers = append(t.answers, a...)
	return nil
}

func (t *fakeTx) AppendEvent(_ context.Context, typ, key string, _ any) error {
	t.events = append(t.events, typ+":"+key)
	return nil
}

func (t *fakeTx) LockQuestion(context.Context, int64) error { return nil }
func (t *fakeTx) ResetCorrect(context.Context, int64) error { return nil }
func (t *fakeTx) GetOption(context.Context, int64) (quiz.Option, error) { return quiz.Option{}, nil }
func (t *fakeTx) InsertOption(context.Context, quiz.NewOption) (quiz.Option, error) {
	return quiz.Option{}, nil
}
func (t *fakeTx) UpdateOption(context.Context, int64, quiz.OptionUpdate) error { return nil }

/* ------------------------------------------------------------------------- */

func optID(v int64) *int64 { return &v }

func fixedClock() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func TestSubmitEmpty(t *testing.T) {
	st := &fakeStore{}
	eng := quiz.NewEngine(st, fixedClock)

	for _, answers := range []map[int64]*int64{nil, {}} {
		_, err := eng.Submit(context.Background(), quiz.Submission{UserID: "u1", QuizID: 1, Answers: answers})
		if !errors.Is(err, quiz.ErrEmptySubmission) {
			t.Fatalf("err = %v, want ErrEmptySubmission", err)
		}
	}
	if len(st.attempts) != 0 {
		t.Fatal("attempt stored for empty submission")
	}
}

func TestSubmitGradesAndPersistsSnapshot(t *testing.T) {
	st := &fakeStore{correct: map[int64]int64{1: 10, 2: 20}}
	eng := quiz.NewEngine(st, fixedClock)

	res, err := eng.Submit(context.Background(), quiz.Submission{
		UserID: "u1", QuizID: 5,
		Answers: map[int64]*int64{1: optID(10), 2: optID(21), 3: nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.ScorePct.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("score = %s", res.ScorePct)
	}
	if len(st.attempts) != 1 {
		t.Fatalf("attempts = %d", len(st.attempts))
	}
	a := st.attempts[0]
	if a.ID != res.AttemptID || a.UserID != "u1" || a.QuizID != 5 {
		t.Fatalf("attempt = %+v", a)
	}
	if !a.StartedAt.Equal(a.CompletedAt) || !a.StartedAt.Equal(fixedClock()) {
		t.Fatalf("timestamps = %v / %v", a.StartedAt, a.CompletedAt)
	}
	if !a.ScorePct.Equal(res.ScorePct) {
		t.Fatalf("stored score %s != returned %s", a.ScorePct, res.ScorePct)
	}

	if len(st.answers) != len(res.Breakdown) {
		t.Fatalf("answers = %d, breakdown = %d", len(st.answers), len(res.Breakdown))
	}
	for i, it := range res.Breakdown {
		row := st.answers[i]
		if row.AttemptID != a.ID || row.QuestionID != it.QuestionID || row.IsCorrect != it.IsCorrect {
			t.Fatalf("row %d = %+v, item = %+v", i, row, it)
		}
		if (row.SelectedOptionID == nil) != (it.SelectedOptionID == nil) {
			t.Fatalf("row %d selection mismatch", i)
		}
	}
	if st.answers[2].IsCorrect || st.answers[2].SelectedOptionID != nil {
		t.Fatalf("unanswered question row = %+v", st.answers[2])
	}
	if res.Breakdown[2].CorrectOptionID != nil {
		t.Fatal("question 3 has no correct option configured")
	}
	if len(st.events) != 1 || st.events[0] != "AttemptSubmitted:"+a.ID {
		t.Fatalf("events = %v", st.events)
	}
}

func TestSubmitOracleFailure(t *testing.T) {
	st := &fakeStore{failOracle: errors.New("connection refused")}
	eng := quiz.NewEngine(st, fixedClock)

	_, err := eng.Submit(context.Background(), quiz.Submission{UserID: "u1", QuizID: 1, Answers: map[int64]*int64{1: optID(1)}})
	if !errors.Is(err, quiz.ErrSubmissionFailed) || !errors.Is(err, quiz.ErrStoreUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, st.failOracle) {
		t.Fatal("store error leaked to caller")
	}
	if len(st.attempts) != 0 {
		t.Fatal("partial attempt stored")
	}
}

func TestSubmitWriteFailureRollsBack(t *testing.T) {
	st := &fakeStore{correct: map[int64]int64{1: 1}, failAnswers: errors.New("disk full")}
	eng := quiz.NewEngine(st, fixedClock)

	_, err := eng.Submit(context.Background(), quiz.Submission{UserID: "u1", QuizID: 1, Answers: map[int64]*int64{1: optID(1)}})
	if !errors.Is(err, quiz.ErrSubmissionFailed) {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, quiz.ErrStoreUnavailable) {
		t.Fatal("write failure reported as oracle failure")
	}
	if len(st.attempts) != 0 || len(st.answers) != 0 || len(st.events) != 0 {
		t.Fatal("rows survived failed submission")
	}
}

func TestResubmissionCreatesDistinctAttempts(t *testing.T) {
	st := &fakeStore{correct: map[int64]int64{1: 1}}
	eng := quiz.NewEngine(st, fixedClock)
	sub := quiz.Submission{UserID: "u1", QuizID: 1, Answers: map[int64]*int64{1: optID(1)}}

	r1, err := eng.Submit(context.Background(), sub)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := eng.Submit(context.Background(), sub)
	if err != nil {
		t.Fatal(err)
	}
	if r1.AttemptID == r2.AttemptID {
		t.Fatal("resubmission reused attempt id")
	}
	if len(st.attempts) != 2 {
		t.Fatalf("attempts = %d", len(st.attempts))
	}
}
