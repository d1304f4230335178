package models

import "testing"

func TestRoleName_Valid(t *testing.T) {
	tests := []struct {
		name string
		role RoleName
		want bool
	}{
		{"requirements is valid", RoleRequirements, true},
		{"context is valid", RoleContext, true},
		{"builder is valid", RoleBuilder, true},
		{"quality is valid", RoleQuality, true},
		{"escalation is valid", RoleEscalation, true},
		{"empty string is invalid", RoleName(""), false},
		{"unknown role is invalid", RoleName("reviewer"), false},
		{"uppercase is invalid", RoleName("BUILDER"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("RoleName(%q).Valid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestAllRoles_Order(t *testing.T) {
	roles := AllRoles()
	if len(roles) != 5 {
		t.Fatalf("AllRoles() returned %d roles, want 5", len(roles))
	}
	if roles[0] != InitialRole {
		t.Errorf("first role = %q, want %q", roles[0], InitialRole)
	}
	if roles[len(roles)-1] != TerminalRole {
		t.Errorf("last role = %q, want %q", roles[len(roles)-1], TerminalRole)
	}
}

func TestDecision_Valid(t *testing.T) {
	if !DecisionComplete.Valid() || !DecisionEscalate.Valid() {
		t.Error("known decisions should be valid")
	}
	if Decision("MAYBE").Valid() {
		t.Error("unknown decision should be invalid")
	}
	if Decision("complete").Valid() {
		t.Error("lowercase decision should be invalid")
	}
}

func TestComplexity_Valid(t *testing.T) {
	for _, c := range []Complexity{ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityUnknown} {
		if !c.Valid() {
			t.Errorf("Complexity(%q).Valid() = false, want true", c)
		}
	}
	if Complexity("trivial").Valid() {
		t.Error("unknown complexity should be invalid")
	}
}
