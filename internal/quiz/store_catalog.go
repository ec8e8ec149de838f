package quiz

import (
	"context"
	"database/sql"
	"errors"
)

func (s *SQLStore) ListSkills(ctx context.Context) ([]Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, is_active FROM skills ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Skill{}
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Description, &sk.IsActive); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSkill(ctx context.Context, id int64) (Skill, error) {
	var sk Skill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_active FROM skills WHERE id=$1`, id).
		Scan(&sk.ID, &sk.Name, &sk.Description, &sk.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return Skill{}, ErrNotFound
	}
	return sk, err
}

func (s *SQLStore) CreateSkill(ctx context.Context, n NewSkill) (Skill, error) {
	sk := Skill{Name: n.Name, Description: n.Description, IsActive: true}
	if n.IsActive != nil {
		sk.IsActive = *n.IsActive
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO skills (name, description, is_active) VALUES ($1,$2,$3) RETURNING id`,
		sk.Name, sk.Description, sk.IsActive).Scan(&sk.ID)
	return sk, err
}

func (s *SQLStore) UpdateSkill(ctx context.Context, id int64, u SkillUpdate) (Skill, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE skills
		    SET name=COALESCE($1, name),
		        description=COALESCE($2, description),
		        is_active=COALESCE($3, is_active)
		  WHERE id=$4`,
		u.Name, u.Description, u.IsActive, id)
	if err != nil {
		return Skill{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Skill{}, ErrNotFound
	}
	return s.GetSkill(ctx, id)
}

func (s *SQLStore) DeleteSkill(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, `DELETE FROM skills WHERE id=$1`, id)
}

func (s *SQLStore) ListQuestions(ctx context.Context, skillID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, skill_id, difficulty FROM questions WHERE skill_id=$1 ORDER BY id`, skillID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.SkillID, &q.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListQuestionsWithOptions returns the skill's questions with their options
// ordered by label. Questions without options are included.
func (s *SQLStore) ListQuestionsWithOptions(ctx context.Context, skillID int64) ([]QuestionWithOptions, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.text, q.skill_id, q.difficulty,
		       o.id, o.label, o.text, o.is_correct
		  FROM questions q
		  LEFT JOIN question_options o ON o.question_id = q.id
		 WHERE q.skill_id = $1
		 ORDER BY q.id, o.label, o.id`, skillID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []QuestionWithOptions{}
	idx := map[int64]int{}
	for rows.Next() {
		var (
			q        Question
			optID    sql.NullInt64
			optLabel *string
			optText  sql.NullString
			optOK    sql.NullBool
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.SkillID, &q.Difficulty, &optID, &optLabel, &optText, &optOK); err != nil {
			return nil, err
		}
		i, ok := idx[q.ID]
		if !ok {
			out = append(out, QuestionWithOptions{Question: q, Options: []Option{}})
			i = len(out) - 1
			idx[q.ID] = i
		}
		if optID.Valid {
			out[i].Options = append(out[i].Options, Option{
				ID: optID.Int64, QuestionID: q.ID, Label: optLabel, Text: optText.String, IsCorrect: optOK.Bool,
			})
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateQuestion(ctx context.Context, n NewQuestion) (Question, error) {
	q := Question{Text: n.Text, SkillID: n.SkillID, Difficulty: n.Difficulty}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO questions (text, skill_id, difficulty) VALUES ($1,$2,$3) RETURNING id`,
		q.Text, q.SkillID, q.Difficulty).Scan(&q.ID)
	return q, err
}

// DeleteQuestion removes the question; its options go with it.
func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, `DELETE FROM questions WHERE id=$1`, id)
}

func (s *SQLStore) GetOption(ctx context.Context, id int64) (Option, error) {
	return getOption(ctx, s.db, id)
}

func (s *SQLStore) DeleteOption(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, `DELETE FROM question_options WHERE id=$1`, id)
}

func deleteByID(ctx context.Context, q querier, stmt string, id int64) error {
	res, err := q.ExecContext(ctx, stmt, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
