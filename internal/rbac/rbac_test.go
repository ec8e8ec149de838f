package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(map[string][]string{
		"user":   {PermQuizTake, "report:*"},
		"admin":  {"*"},
		"nobody": nil,
	})
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"user", PermQuizTake, true},
		{"user", PermReportViewOwn, true},
		{"user", PermReportViewAll, true},
		{"user", PermOptionManage, false},
		{"admin", PermAuditView, true},
		{"nobody", PermQuizTake, false},
		{"ghost", PermQuizTake, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
	if !c.Any("user", PermOptionManage, PermQuizTake) {
		t.Error("Any should match the second permission")
	}
}

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	for _, p := range []string{PermSkillView, PermQuestionView, PermQuizTake, PermReportViewOwn} {
		if !c.Has("user", p) {
			t.Errorf("user lacks %s", p)
		}
	}
	for _, p := range []string{PermSkillManage, PermQuestionManage, PermOptionManage, PermReportViewAll, PermAuditView} {
		if c.Has("user", p) {
			t.Errorf("user holds %s", p)
		}
	}
}

func serve(h http.Handler, role string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithRole(context.Background(), role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	h := Require(PermOptionManage)(ok)
	if code := serve(h, "admin"); code != http.StatusNoContent {
		t.Fatalf("admin: %d", code)
	}
	if code := serve(h, "user"); code != http.StatusForbidden {
		t.Fatalf("user: %d", code)
	}
	if code := serve(h, ""); code != http.StatusForbidden {
		t.Fatalf("anonymous: %d", code)
	}

	either := RequireAny(PermReportViewOwn, PermReportViewAll)(ok)
	if code := serve(either, "user"); code != http.StatusNoContent {
		t.Fatalf("any user: %d", code)
	}
}

func TestRequireOwnerOr(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	owner := false
	h := RequireOwnerOr(PermReportViewAll, func(*http.Request) bool { return owner })(ok)

	if code := serve(h, "user"); code != http.StatusForbidden {
		t.Fatalf("non-owner user: %d", code)
	}
	if code := serve(h, "admin"); code != http.StatusNoContent {
		t.Fatalf("admin: %d", code)
	}
	owner = true
	if code := serve(h, "user"); code != http.StatusNoContent {
		t.Fatalf("owner: %d", code)
	}
}
