package quiz

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/skillcheck/internal/grading"
)

type Skill struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
}

type NewSkill struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"` // nil means active
}

// SkillUpdate changes only the non-nil fields.
type SkillUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (u SkillUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.IsActive == nil
}

type Question struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	SkillID    int64   `json:"skill_id"`
	Difficulty *string `json:"difficulty"`
}

type NewQuestion struct {
	Text       string  `json:"text"`
	SkillID    int64   `json:"skill_id"`
	Difficulty *string `json:"difficulty,omitempty"`
}

type Option struct {
	ID         int64   `json:"id"`
	QuestionID int64   `json:"question_id"`
	Label      *string `json:"label"`
	Text       string  `json:"text"`
	IsCorrect  bool    `json:"is_correct"`
}

type NewOption struct {
	QuestionID int64   `json:"question_id"`
	Label      *string `json:"label,omitempty"`
	Text       string  `json:"text"`
	IsCorrect  bool    `json:"is_correct,omitempty"`
}

// OptionUpdate changes only the non-nil fields. Setting IsCorrect to true
// clears the flag on the question's other options first.
type OptionUpdate struct {
	Label     *string `json:"label,omitempty"`
	Text      *string `json:"text,omitempty"`
	IsCorrect *bool   `json:"is_correct,omitempty"`
}

func (u OptionUpdate) Empty() bool {
	return u.Label == nil && u.Text == nil && u.IsCorrect == nil
}

func (u OptionUpdate) marksCorrect() bool {
	return u.IsCorrect != nil && *u.IsCorrect
}

// QuestionWithOptions is the quiz-taking view of a question.
type QuestionWithOptions struct {
	Question
	Options []Option `json:"options"`
}

// Attempt is one graded submission. QuizID is the skill id: a skill is
// taken as a single quiz.
type Attempt struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	QuizID      int64           `json:"quiz_id"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	ScorePct    decimal.Decimal `json:"score_pct"`
}

// Answer is the stored grading snapshot of one submitted question.
type Answer struct {
	ID               string    `json:"id"`
	AttemptID        string    `json:"attempt_id"`
	QuestionID       int64     `json:"question_id"`
	SelectedOptionID *int64    `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// Submission maps question id to the selected option id; a nil value is an
// unanswered question.
type Submission struct {
	UserID  string
	QuizID  int64
	Answers map[int64]*int64
}

type Result struct {
	AttemptID string          `json:"attempt_id"`
	ScorePct  decimal.Decimal `json:"score_pct"`
	Breakdown []grading.Item  `json:"breakdown"`
}
