package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	syncx "github.com/mind-engage/skillcheck/internal/sync"
)

// OptionService writes options while keeping at most one correct option per
// question. Marking an option correct clears the flag on the question's
// other options in the same transaction, before the write.
type OptionService struct {
	store   TxRunner
	catalog Catalog
}

func NewOptionService(store TxRunner, catalog Catalog) *OptionService {
	return &OptionService{store: store, catalog: catalog}
}

func (s *OptionService) Create(ctx context.Context, n NewOption) (Option, error) {
	n.Text = strings.TrimSpace(n.Text)
	if n.QuestionID <= 0 || n.Text == "" {
		return Option{}, fmt.Errorf("%w: question_id and text required", ErrInvalidInput)
	}

	var created Option
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		if err := tx.LockQuestion(ctx, n.QuestionID); err != nil {
			return err
		}
		if n.IsCorrect {
			if err := tx.ResetCorrect(ctx, n.QuestionID); err != nil {
				return fmt.Errorf("reset correct: %w", err)
			}
		}
		o, err := tx.InsertOption(ctx, n)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
		if o.IsCorrect {
			if err := appendMarkedCorrect(ctx, tx, o); err != nil {
				return err
			}
		}
		created = o
		return nil
	})
	if err != nil {
		return Option{}, s.fail("create", err)
	}
	return created, nil
}

// Update changes the supplied fields only. The reset runs only when the
// update sets IsCorrect to true.
func (s *OptionService) Update(ctx context.Context, id int64, u OptionUpdate) (Option, error) {
	if u.Text != nil {
		t := strings.TrimSpace(*u.Text)
		if t == "" {
			return Option{}, fmt.Errorf("%w: text must not be empty", ErrInvalidInput)
		}
		u.Text = &t
	}

	var updated Option
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		cur, err := tx.GetOption(ctx, id)
		if err != nil {
			return err
		}
		if u.Empty() {
			updated = cur
			return nil
		}
		if u.marksCorrect() {
			if err := tx.LockQuestion(ctx, cur.QuestionID); err != nil {
				return err
			}
			if err := tx.ResetCorrect(ctx, cur.QuestionID); err != nil {
				return fmt.Errorf("reset correct: %w", err)
			}
		}
		if err := tx.UpdateOption(ctx, id, u); err != nil {
			return err
		}
		if updated, err = tx.GetOption(ctx, id); err != nil {
			return err
		}
		if u.marksCorrect() {
			return appendMarkedCorrect(ctx, tx, updated)
		}
		return nil
	})
	if err != nil {
		return Option{}, s.fail("update", err)
	}
	return updated, nil
}

// Delete removes the option. No other option is promoted to correct.
func (s *OptionService) Delete(ctx context.Context, id int64) error {
	if err := s.catalog.DeleteOption(ctx, id); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

func appendMarkedCorrect(ctx context.Context, tx Tx, o Option) error {
	err := tx.AppendEvent(ctx, syncx.TypeOptionMarkedCorrect, strconv.FormatInt(o.ID, 10), map[string]int64{
		"question_id": o.QuestionID,
		"option_id":   o.ID,
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *OptionService) fail(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	log.Printf("quiz: option %s rolled back: %v", op, err)
	return ErrOptionEnforcementFailed
}
