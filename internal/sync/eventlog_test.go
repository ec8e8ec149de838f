package syncx_test

import (
	"context"
	"testing"

	"github.com/mind-engage/skillcheck/internal/db/dbtest"
	syncx "github.com/mind-engage/skillcheck/internal/sync"
)

func TestAppendAndAfter(t *testing.T) {
	ctx := context.Background()
	h := dbtest.Open(t)

	if err := syncx.Append(ctx, h, syncx.TypeAttemptSubmitted, "a-1", map[string]any{"score_pct": "50.00"}); err != nil {
		t.Fatal(err)
	}
	if err := syncx.Append(ctx, h, syncx.TypeOptionMarkedCorrect, "7", map[string]int64{"question_id": 3}); err != nil {
		t.Fatal(err)
	}

	repo := syncx.NewEventRepo(h)
	all, err := repo.After(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Type != syncx.TypeAttemptSubmitted || all[0].Key != "a-1" {
		t.Fatalf("first event = %+v", all[0])
	}
	if all[1].DataJSON != `{"question_id":3}` {
		t.Fatalf("data = %s", all[1].DataJSON)
	}

	rest, err := repo.After(ctx, all[0].Seq, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].Seq != all[1].Seq {
		t.Fatalf("After(first) = %+v", rest)
	}
}

func TestAppendRollsBackWithTx(t *testing.T) {
	ctx := context.Background()
	h := dbtest.Open(t)

	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := syncx.Append(ctx, tx, syncx.TypeAttemptSubmitted, "a-2", nil); err != nil {
		t.Fatal(err)
	}
	_ = tx.Rollback()

	got, err := syncx.NewEventRepo(h).After(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("rolled back event visible: %+v", got)
	}
}
