package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret")
	tok, err := a.IssueJWT("user-1", "instructor")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "user-1" || c.Role != "instructor" {
		t.Fatalf("claims = %+v", c)
	}

	// A token signed with a different secret must be rejected.
	other := NewAuthService("other-secret")
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token accepted across secrets")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = rbac.SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	// No header.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status %d, want 401", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", rec.Code)
	}

	// Valid token attaches identity.
	tok, err := a.IssueJWT("stu-1", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", rec.Code)
	}
	if gotSub != "stu-1" || gotRole != "student" {
		t.Fatalf("context identity = %q/%q", gotSub, gotRole)
	}
}
