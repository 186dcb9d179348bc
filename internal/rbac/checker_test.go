package rbac

import "testing"

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{RoleStudent, "lab:signup", true},
		{RoleStudent, "eval:grade", false},
		{RoleStudent, "clinical:create", true},
		{RoleInstructor, "eval:grade", true},
		{RoleInstructor, "eval:create", true},
		{RoleInstructor, "lab:signup", false},
		{RoleAdmin, "eval:grade", true},
		{RoleAdmin, "anything:at_all", true},
		{"", "eval:grade", false},
		{"unknown", "lab:view", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestCheckerAnyAndWildcards(t *testing.T) {
	c := NewChecker(map[string][]string{
		"auditor": {"report:*"},
	})
	if !c.Has("auditor", "report:view") {
		t.Fatal("prefix wildcard did not match")
	}
	if c.Has("auditor", "eval:grade") {
		t.Fatal("prefix wildcard matched foreign permission")
	}
	if !c.Any("auditor", "eval:grade", "report:view") {
		t.Fatal("Any missed a held permission")
	}
	if c.Any("auditor", "eval:grade", "lab:view") {
		t.Fatal("Any matched with no held permission")
	}
}
