// Package envelope writes the tagged JSON result every endpoint answers with:
//
//	{"ok":true,"data":...}
//	{"ok":false,"error":{"kind":"NotFound","message":"..."}}
package envelope

import (
	"encoding/json"
	"net/http"
)

const (
	KindEmptySubmission         = "EmptySubmission"
	KindSubmissionFailed        = "SubmissionFailed"
	KindStoreUnavailable        = "StoreUnavailable"
	KindOptionEnforcementFailed = "OptionEnforcementFailed"
	KindNotFound                = "NotFound"
	KindInvalidInput            = "InvalidInput"
	KindConflict                = "Conflict"
	KindUnauthorized            = "Unauthorized"
	KindForbidden               = "Forbidden"
	KindInternal                = "Internal"
)

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Result struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

// OK writes a success result with the given status.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, Result{OK: true, Data: data})
}

func Fail(w http.ResponseWriter, status int, kind, msg string) {
	write(w, status, Result{Error: &Error{Kind: kind, Message: msg}})
}
