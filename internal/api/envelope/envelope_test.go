package envelope

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}
	var got struct {
		OK    bool            `json:"ok"`
		Data  map[string]int  `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.OK || got.Data["id"] != 7 || got.Error != nil {
		t.Fatalf("body = %+v", got)
	}
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusBadRequest, KindEmptySubmission, "no answers")

	var got Result
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest || got.OK || got.Data != nil {
		t.Fatalf("status=%d body=%+v", rec.Code, got)
	}
	if got.Error == nil || got.Error.Kind != KindEmptySubmission || got.Error.Message != "no answers" {
		t.Fatalf("error = %+v", got.Error)
	}
}
