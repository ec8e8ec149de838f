// Package grading scores single-choice quiz answers against the correct
// option of each question.
//
// Scores are percentages with two decimal places, rounded half away from
// zero (for non-negative scores that is round-half-up): 1 correct of 32
// questions is 3.125% and is reported as 3.13.
package grading

import (
	"sort"

	"github.com/shopspring/decimal"
)

const scorePlaces = 2

var hundred = decimal.NewFromInt(100)

// Item is the graded outcome of one submitted question.
type Item struct {
	QuestionID       int64  `json:"question_id"`
	SelectedOptionID *int64 `json:"selected_option_id"`
	CorrectOptionID  *int64 `json:"correct_option_id"`
	IsCorrect        bool   `json:"is_correct"`
}

// Match reports whether a selection hits the correct option. A missing
// selection or a missing correct option never matches.
func Match(selected, correct *int64) bool {
	if selected == nil || correct == nil {
		return false
	}
	return *selected == *correct
}

// Grade grades every submitted question, including ones without a
// selection. correct maps question id to its correct option id; questions
// absent from it have no correct option configured. Items are ordered by
// question id.
func Grade(answers map[int64]*int64, correct map[int64]int64) []Item {
	ids := make([]int64, 0, len(answers))
	for qid := range answers {
		ids = append(ids, qid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]Item, 0, len(ids))
	for _, qid := range ids {
		it := Item{QuestionID: qid}
		if sel := answers[qid]; sel != nil {
			v := *sel
			it.SelectedOptionID = &v
		}
		if c, ok := correct[qid]; ok {
			v := c
			it.CorrectOptionID = &v
		}
		it.IsCorrect = Match(it.SelectedOptionID, it.CorrectOptionID)
		items = append(items, it)
	}
	return items
}

// CountCorrect returns the number of correctly answered items.
func CountCorrect(items []Item) int {
	n := 0
	for _, it := range items {
		if it.IsCorrect {
			n++
		}
	}
	return n
}

// ScorePct returns round(100*correct/total, 2). total must be positive.
func ScorePct(correct, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(correct)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(scorePlaces)
}

// Score grades the items' overall percentage.
func Score(items []Item) decimal.Decimal {
	return ScorePct(CountCorrect(items), len(items))
}
