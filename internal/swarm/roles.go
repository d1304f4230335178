package swarm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codecollab/swarm/pkg/models"
)

// Role is one fixed pipeline responsibility: an immutable identity plus
// the static instruction payload sent on every activation.
type Role struct {
	// Name is the role identity.
	Name models.RoleName
	// SystemPrompt is the instruction payload, set at construction.
	SystemPrompt string
}

// requirementsPrompt instructs the requirements role.
const requirementsPrompt = `Requirements Agent - Extract structured requirements. Be concise.

Task: Analyze the request, identify requirements, assess complexity (simple/medium/complex).

Output: JSON with task_type, requirements list, acceptance_criteria, complexity, edge_cases.

IMMEDIATELY hand off to the context agent when done:
call handoff_to_agent with agent_name="context", message="Requirements ready", context={"requirements": {...}}`

// contextPrompt instructs the context role.
const contextPrompt = `Context Agent - Provide implementation context. Be brief.

Task: Identify what files/structure are needed, where to add code, patterns to follow.

Output: Brief context analysis (file structure, approach, dependencies).

IMMEDIATELY hand off to the builder agent:
call handoff_to_agent with agent_name="builder", message="Context ready", context={"requirements": {...}, "codebase_context": {...}}`

// builderPrompt instructs the builder role.
const builderPrompt = `Builder Agent - Write code + tests. Be efficient.

Task: Write production code with type hints, docstrings, and unit tests.

Output: Code block + test block. No long explanations.

IMMEDIATELY hand off to the quality agent:
call handoff_to_agent with agent_name="quality", message="Code ready", context={"implementation": "...", "tests": "..."}`

// qualityPrompt instructs the quality role.
const qualityPrompt = `Quality Agent - Quick check. BE LENIENT.

Task: Verify the code works, has tests, meets requirements. Score 0-100.

Scoring (SIMPLE tasks): Working code=85, +tests=90, +docstring=95. PASS if >=70.

Output: "PASS/FAIL, Score: X/100, Brief reason"

IMMEDIATELY hand off to the escalation agent:
call handoff_to_agent with agent_name="escalation", message="Quality check done", context={"quality_score": X, "status": "PASS"}`

// escalationPrompt instructs the terminal escalation role.
const escalationPrompt = `Escalation Agent - Final decision. Be concise. DO NOT ESCALATE 95% of tasks.

Task: Make the COMPLETE/ESCALATE decision. Check the quality score, review the code.

Rules:
- Quality >=70? COMPLETE (don't escalate)
- Simple tasks (algos, basic functions)? COMPLETE
- Only escalate on MULTIPLE critical issues (score <50, security holes, unclear requirements)

REQUIRED format (MUST include the code):
DECISION: COMPLETE

Status: AI Implementation Successful
Quality: X/100

` + "```" + `
[COPY THE FULL CODE FROM THE BUILDER AGENT HERE - THIS IS MANDATORY]
` + "```" + `

Brief summary: [1-2 sentences]

DO NOT call handoff_to_agent. End the run by not calling any tools.`

// DefaultRoles returns the five fixed roles with their built-in prompts.
func DefaultRoles() map[models.RoleName]Role {
	return map[models.RoleName]Role{
		models.RoleRequirements: {Name: models.RoleRequirements, SystemPrompt: requirementsPrompt},
		models.RoleContext:      {Name: models.RoleContext, SystemPrompt: contextPrompt},
		models.RoleBuilder:      {Name: models.RoleBuilder, SystemPrompt: builderPrompt},
		models.RoleQuality:      {Name: models.RoleQuality, SystemPrompt: qualityPrompt},
		models.RoleEscalation:   {Name: models.RoleEscalation, SystemPrompt: escalationPrompt},
	}
}

// rolesFile is the YAML shape of a role prompt override file.
type rolesFile struct {
	Roles map[string]struct {
		SystemPrompt string `yaml:"system_prompt"`
	} `yaml:"roles"`
}

// LoadRoleOverrides reads a roles.yaml file and overlays its prompts on
// the defaults. Unknown role names are rejected; the set of roles is
// fixed for a run and cannot be extended.
func LoadRoleOverrides(path string) (map[models.RoleName]Role, error) {
	roles := DefaultRoles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}

	var file rolesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roles file: %w", err)
	}

	for name, override := range file.Roles {
		role := models.RoleName(name)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in %s", name, path)
		}
		if override.SystemPrompt == "" {
			continue
		}
		roles[role] = Role{Name: role, SystemPrompt: override.SystemPrompt}
	}

	return roles, nil
}
