package models

// RoleName identifies one of the five fixed swarm roles.
type RoleName string

const (
	// RoleRequirements analyzes the task and extracts structured requirements.
	RoleRequirements RoleName = "requirements"
	// RoleContext gathers implementation context for the builder.
	RoleContext RoleName = "context"
	// RoleBuilder writes the implementation and its tests.
	RoleBuilder RoleName = "builder"
	// RoleQuality reviews the implementation and assigns a quality score.
	RoleQuality RoleName = "quality"
	// RoleEscalation makes the final COMPLETE/ESCALATE decision.
	RoleEscalation RoleName = "escalation"
)

// Valid returns true if the role name is a known value.
func (r RoleName) Valid() bool {
	switch r {
	case RoleRequirements, RoleContext, RoleBuilder, RoleQuality, RoleEscalation:
		return true
	default:
		return false
	}
}

// InitialRole is the role that receives the raw task description.
const InitialRole = RoleRequirements

// TerminalRole is the role expected to end the run without handing off.
const TerminalRole = RoleEscalation

// AllRoles returns the five roles in pipeline order.
func AllRoles() []RoleName {
	return []RoleName{
		RoleRequirements,
		RoleContext,
		RoleBuilder,
		RoleQuality,
		RoleEscalation,
	}
}
