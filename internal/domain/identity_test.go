package domain

import "testing"

func TestRoleSetFromStrings_DropsUnknownAndDuplicates(t *testing.T) {
	set := RoleSetFromStrings([]string{"staff", "root", "staff", "user"})
	if len(set) != 2 {
		t.Fatalf("Expected 2 roles, got %v", set)
	}
	if !set.Has(RoleStaff) || !set.Has(RoleUser) {
		t.Errorf("Unexpected set: %v", set)
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("superadmin"); err != nil {
		t.Errorf("Expected superadmin to parse, got %v", err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Error("Expected unknown role to fail")
	}
}

func TestScopeFor_Superadmin(t *testing.T) {
	identity := &Identity{Roles: NewRoleSet(RoleSuperadmin)}
	scope := ScopeFor(identity)
	if !scope.All {
		t.Error("Expected unrestricted scope for superadmin")
	}
	if !scope.Covers(99) {
		t.Error("Expected unrestricted scope to cover any category")
	}
}

func TestScopeFor_StaffAssignments(t *testing.T) {
	identity := &Identity{
		Roles:            NewRoleSet(RoleStaff),
		StaffAssignments: []int32{1, 3},
	}
	scope := ScopeFor(identity)
	if scope.All {
		t.Error("Expected restricted scope for staff")
	}
	if !scope.Covers(1) || !scope.Covers(3) {
		t.Error("Expected scope to cover assigned categories")
	}
	if scope.Covers(2) {
		t.Error("Expected scope not to cover unassigned categories")
	}
}

func TestScopeFor_StaffWithoutAssignmentsIsEmpty(t *testing.T) {
	identity := &Identity{Roles: NewRoleSet(RoleStaff)}
	scope := ScopeFor(identity)
	if !scope.Empty() {
		t.Error("Expected empty scope for staff without assignments")
	}
	if scope.Covers(1) {
		t.Error("Empty scope must not cover any category")
	}
}

func TestScopeFor_PlainUserAndNil(t *testing.T) {
	user := &Identity{Roles: NewRoleSet(RoleUser), StaffAssignments: []int32{1}}
	if !ScopeFor(user).Empty() {
		t.Error("Assignments without the staff role must not grant scope")
	}
	if !ScopeFor(nil).Empty() {
		t.Error("Expected empty scope for nil identity")
	}
}
