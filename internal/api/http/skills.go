package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/quiz"
)

// GET /skills
func ListSkillsHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cat.ListSkills(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, list)
	}
}

// POST /skills {"name": "...", "description": "...", "is_active": true}
func CreateSkillHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.NewSkill
		if !decodeJSON(w, r, &in) {
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "name required")
			return
		}
		sk, err := cat.CreateSkill(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusCreated, sk)
	}
}

// PUT /skills/{id} with any subset of name, description, is_active.
func UpdateSkillHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var in quiz.SkillUpdate
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Empty() {
			envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "nothing to update")
			return
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
			envelope.Fail(w, http.StatusBadRequest, envelope.KindInvalidInput, "name must not be empty")
			return
		}
		sk, err := cat.UpdateSkill(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, sk)
	}
}

// DELETE /skills/{id}
func DeleteSkillHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := cat.DeleteSkill(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
