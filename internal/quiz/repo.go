package quiz

import "context"

// Oracle resolves the currently correct option of each question. Questions
// without a correct option are absent from the result.
type Oracle interface {
	CorrectOptions(ctx context.Context, questionIDs []int64) (map[int64]int64, error)
}

// Tx is the unit of work the submission engine and the option enforcer run
// in. Everything done through one Tx commits or rolls back together.
type Tx interface {
	Oracle

	InsertAttempt(ctx context.Context, a Attempt) error
	InsertAnswers(ctx context.Context, answers []Answer) error

	// LockQuestion serializes correctness changes on one question and
	// returns ErrNotFound when the question does not exist.
	LockQuestion(ctx context.Context, questionID int64) error
	ResetCorrect(ctx context.Context, questionID int64) error
	GetOption(ctx context.Context, id int64) (Option, error)
	InsertOption(ctx context.Context, o NewOption) (Option, error)
	UpdateOption(ctx context.Context, id int64, u OptionUpdate) error

	AppendEvent(ctx context.Context, typ, key string, data any) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Catalog is the plain CRUD surface over skills, questions and options.
type Catalog interface {
	ListSkills(ctx context.Context) ([]Skill, error)
	GetSkill(ctx context.Context, id int64) (Skill, error)
	CreateSkill(ctx context.Context, s NewSkill) (Skill, error)
	UpdateSkill(ctx context.Context, id int64, u SkillUpdate) (Skill, error)
	DeleteSkill(ctx context.Context, id int64) error

	ListQuestions(ctx context.Context, skillID int64) ([]Question, error)
	ListQuestionsWithOptions(ctx context.Context, skillID int64) ([]QuestionWithOptions, error)
	CreateQuestion(ctx context.Context, q NewQuestion) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error

	GetOption(ctx context.Context, id int64) (Option, error)
	DeleteOption(ctx context.Context, id int64) error
}
