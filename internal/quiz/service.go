package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/skillcheck/internal/grading"
	syncx "github.com/mind-engage/skillcheck/internal/sync"
)

type Clock func() time.Time

// Engine grades and persists quiz submissions.
type Engine struct {
	store TxRunner
	now   Clock
	newID func() string
}

func NewEngine(store TxRunner, now Clock) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now, newID: uuid.NewString}
}

// Submit grades the answers against the current correct options and stores
// the attempt with one answer row per submitted question, all in one
// transaction. The returned breakdown is built from the same items that
// were persisted.
//
// Errors: ErrEmptySubmission for an empty answer set; otherwise
// ErrSubmissionFailed (also matching ErrStoreUnavailable when the correct
// options could not be read). Nothing is stored on error.
func (e *Engine) Submit(ctx context.Context, sub Submission) (Result, error) {
	if len(sub.Answers) == 0 {
		return Result{}, ErrEmptySubmission
	}

	questionIDs := make([]int64, 0, len(sub.Answers))
	for qid := range sub.Answers {
		questionIDs = append(questionIDs, qid)
	}
	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

	var res Result
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		correct, err := tx.CorrectOptions(ctx, questionIDs)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		items := grading.Grade(sub.Answers, correct)
		score := grading.Score(items)
		now := e.now().UTC().Truncate(time.Second)

		attempt := Attempt{
			ID:          e.newID(),
			UserID:      sub.UserID,
			QuizID:      sub.QuizID,
			StartedAt:   now,
			CompletedAt: now,
			ScorePct:    score,
		}
		if err := tx.InsertAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		if err := tx.InsertAnswers(ctx, answerRows(attempt, items, e.newID)); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		if err := tx.AppendEvent(ctx, syncx.TypeAttemptSubmitted, attempt.ID, map[string]any{
			"user_id":   attempt.UserID,
			"quiz_id":   attempt.QuizID,
			"score_pct": score.StringFixed(2),
		}); err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		res = Result{AttemptID: attempt.ID, ScorePct: score, Breakdown: items}
		return nil
	})
	if err != nil {
		log.Printf("quiz: submit user=%s quiz=%d rolled back: %v", sub.UserID, sub.QuizID, err)
		if errors.Is(err, ErrStoreUnavailable) {
			return Result{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, ErrStoreUnavailable)
		}
		return Result{}, ErrSubmissionFailed
	}
	return res, nil
}

func answerRows(a Attempt, items []grading.Item, newID func() string) []Answer {
	rows := make([]Answer, 0, len(items))
	for _, it := range items {
		rows = append(rows, Answer{
			ID:               newID(),
			AttemptID:        a.ID,
			QuestionID:       it.QuestionID,
			SelectedOptionID: it.SelectedOptionID,
			IsCorrect:        it.IsCorrect,
			AnsweredAt:       a.CompletedAt,
		})
	}
	return rows
}
