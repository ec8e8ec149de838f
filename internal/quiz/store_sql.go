package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/skillcheck/internal/db"
	syncx "github.com/mind-engage/skillcheck/internal/sync"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore persists the quiz domain in a relational database. It holds no
// state besides the handle it was constructed with.
type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(h *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: h, driver: driver}
}

// WithinTx runs fn in one database transaction: commit when fn returns nil,
// rollback otherwise.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", cerr)
		}
	}()
	return fn(&sqlTx{q: tx, driver: s.driver})
}

// CorrectOptions is the oracle outside of a transaction.
func (s *SQLStore) CorrectOptions(ctx context.Context, questionIDs []int64) (map[int64]int64, error) {
	return correctOptions(ctx, s.db, questionIDs)
}

type sqlTx struct {
	q      querier
	driver db.Driver
}

func (t *sqlTx) CorrectOptions(ctx context.Context, questionIDs []int64) (map[int64]int64, error) {
	return correctOptions(ctx, t.q, questionIDs)
}

func correctOptions(ctx context.Context, q querier, questionIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(questionIDs)+1)
	args = append(args, true)
	for _, id := range questionIDs {
		args = append(args, id)
	}
	// with more than one correct row the newest wins
	rows, err := q.QueryContext(ctx,
		`SELECT id, question_id FROM question_options
		  WHERE is_correct = $1 AND question_id IN (`+placeholders(2, len(questionIDs))+`)
		  ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var optID, qID int64
		if err := rows.Scan(&optID, &qID); err != nil {
			return nil, err
		}
		out[qID] = optID
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertAttempt(ctx context.Context, a Attempt) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, user_id, quiz_id, started_at, completed_at, score_pct)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.QuizID, a.StartedAt.Unix(), a.CompletedAt.Unix(), a.ScorePct.StringFixed(2))
	return err
}

func (t *sqlTx) InsertAnswers(ctx context.Context, answers []Answer) error {
	if len(answers) == 0 {
		return nil
	}
	const cols = 6
	var b strings.Builder
	b.WriteString(`INSERT INTO quiz_answers (id, attempt_id, question_id, selected_option_id, is_correct, answered_at) VALUES `)
	args := make([]any, 0, len(answers)*cols)
	for i, a := range answers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		b.WriteString(placeholders(i*cols+1, cols))
		b.WriteByte(')')
		args = append(args, a.ID, a.AttemptID, a.QuestionID, a.SelectedOptionID, a.IsCorrect, a.AnsweredAt.Unix())
	}
	_, err := t.q.ExecContext(ctx, b.String(), args...)
	return err
}

func (t *sqlTx) LockQuestion(ctx context.Context, questionID int64) error {
	query := `SELECT id FROM questions WHERE id=$1`
	if t.driver.IsPostgres() {
		// row lock held until commit; SQLite already serializes writers
		query += ` FOR UPDATE`
	}
	var id int64
	if err := t.q.QueryRowContext(ctx, query, questionID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (t *sqlTx) ResetCorrect(ctx context.Context, questionID int64) error {
	_, err := t.q.ExecContext(ctx,
		`UPDATE question_options SET is_correct=$1 WHERE question_id=$2 AND is_correct=$3`,
		false, questionID, true)
	return err
}

func (t *sqlTx) GetOption(ctx context.Context, id int64) (Option, error) {
	return getOption(ctx, t.q, id)
}

func getOption(ctx context.Context, q querier, id int64) (Option, error) {
	var o Option
	err := q.QueryRowContext(ctx,
		`SELECT id, question_id, label, text, is_correct FROM question_options WHERE id=$1`, id).
		Scan(&o.ID, &o.QuestionID, &o.Label, &o.Text, &o.IsCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return Option{}, ErrNotFound
	}
	return o, err
}

func (t *sqlTx) InsertOption(ctx context.Context, n NewOption) (Option, error) {
	o := Option{QuestionID: n.QuestionID, Label: n.Label, Text: n.Text, IsCorrect: n.IsCorrect}
	err := t.q.QueryRowContext(ctx,
		`INSERT INTO question_options (question_id, label, text, is_correct)
		 VALUES ($1,$2,$3,$4)
		 RETURNING id`,
		n.QuestionID, n.Label, n.Text, n.IsCorrect).Scan(&o.ID)
	return o, err
}

func (t *sqlTx) UpdateOption(ctx context.Context, id int64, u OptionUpdate) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE question_options
		    SET label=COALESCE($1, label),
		        text=COALESCE($2, text),
		        is_correct=COALESCE($3, is_correct)
		  WHERE id=$4`,
		u.Label, u.Text, u.IsCorrect, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *sqlTx) AppendEvent(ctx context.Context, typ, key string, data any) error {
	return syncx.Append(ctx, t.q, typ, key, data)
}

// placeholders renders "$start,...,$start+n-1".
func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}
