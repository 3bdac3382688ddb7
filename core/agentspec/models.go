package agentspec

import (
	"fmt"
	"strings"
)

// EmpireDescription describes an organization ("empire") for which agent
// specifications are requested.
type EmpireDescription struct {
	EmpireName               string   `json:"empire_name"`
	PrimaryFocusDomains      []string `json:"primary_focus_domains"`
	MainGoals                []string `json:"main_goals"`
	AvailableResources       []string `json:"available_resources"`
	CorePrinciples           []string `json:"core_principles"`
	KeyChallenges            []string `json:"key_challenges"`
	OperationalStyle         *string  `json:"operational_style,omitempty"`
	KeyProcessesOrWorkflows  []string `json:"key_processes_or_workflows,omitempty"`
	DesiredAgentCapabilities []string `json:"desired_agent_capabilities,omitempty"`
}

// FieldError reports a request field that failed validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks required fields and minimum list sizes. It returns the
// first violation as a *FieldError.
func (d *EmpireDescription) Validate() error {
	if strings.TrimSpace(d.EmpireName) == "" {
		return &FieldError{Field: "empire_name", Reason: "field required"}
	}

	minOne := []struct {
		field  string
		values []string
	}{
		{"primary_focus_domains", d.PrimaryFocusDomains},
		{"main_goals", d.MainGoals},
		{"key_challenges", d.KeyChallenges},
	}
	for _, f := range minOne {
		if len(f.values) == 0 {
			return &FieldError{Field: f.field, Reason: "must contain at least one item"}
		}
	}

	// Present but possibly empty.
	if d.AvailableResources == nil {
		return &FieldError{Field: "available_resources", Reason: "field required"}
	}
	if d.CorePrinciples == nil {
		return &FieldError{Field: "core_principles", Reason: "field required"}
	}
	return nil
}

// ExtendedEmpireDescription is the richer, narrative form sent by the
// empire builder UI.
type ExtendedEmpireDescription struct {
	EmpireNameAndDescription string   `json:"empire_name_and_description"`
	Ends                     []string `json:"ends"`
	Means                    []string `json:"means"`
	Principles               []string `json:"principles"`
	Identity                 []string `json:"identity"`
	Resentments              []string `json:"resentments"`
	Emotions                 []string `json:"emotions"`
}

// Validate requires the name and at least one end.
func (d *ExtendedEmpireDescription) Validate() error {
	if strings.TrimSpace(d.EmpireNameAndDescription) == "" {
		return &FieldError{Field: "empire_name_and_description", Reason: "field required"}
	}
	if len(d.Ends) == 0 {
		return &FieldError{Field: "ends", Reason: "must contain at least one item"}
	}
	return nil
}

// Name returns the empire name: the text before " - " on the first line of
// EmpireNameAndDescription, or the whole first line.
func (d *ExtendedEmpireDescription) Name() string {
	first, _, _ := strings.Cut(strings.TrimSpace(d.EmpireNameAndDescription), "\n")
	name, _, _ := strings.Cut(first, " - ")
	return strings.TrimSpace(name)
}

// ToStandard maps the extended form onto EmpireDescription. Means double as
// focus domains and resources, resentments become challenges, and identity
// statements are joined into the operational style.
func (d *ExtendedEmpireDescription) ToStandard() EmpireDescription {
	std := EmpireDescription{
		EmpireName:          d.Name(),
		PrimaryFocusDomains: nonNil(d.Means),
		MainGoals:           nonNil(d.Ends),
		AvailableResources:  nonNil(d.Means),
		CorePrinciples:      nonNil(d.Principles),
		KeyChallenges:       nonNil(d.Resentments),
	}
	if len(d.Identity) > 0 {
		style := strings.Join(d.Identity, " ")
		std.OperationalStyle = &style
	}
	if len(d.Emotions) > 0 {
		std.DesiredAgentCapabilities = append([]string(nil), d.Emotions...)
	}
	return std
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}

// AgentSpecification is one suggested agent, as returned by the model.
type AgentSpecification struct {
	AgentID                             string   `json:"agent_id" jsonschema:"description=Unique identifier for the agent"`
	AgentName                           string   `json:"agent_name" jsonschema:"description=Name of the agent"`
	AgentPurposeAndTasks                string   `json:"agent_purpose_and_tasks" jsonschema:"description=Purpose and tasks the agent will perform"`
	LinkedEmpireNeedOrComponent         string   `json:"linked_empire_need_or_component" jsonschema:"description=Specific empire need or component this agent addresses"`
	PrimaryDomainCategory               string   `json:"primary_domain_category" jsonschema:"description=Primary domain category for the agent"`
	SuggestedTechnicalApproach          string   `json:"suggested_technical_approach" jsonschema:"description=Suggested technical approach for implementing the agent"`
	EstimatedComplexityToBuild          string   `json:"estimated_complexity_to_build" jsonschema:"description=Estimated complexity level to build this agent"`
	KeyDataInputs                       []string `json:"key_data_inputs" jsonschema:"description=Key data inputs required by the agent"`
	KeyDataOutputsOrActions             []string `json:"key_data_outputs_or_actions" jsonschema:"description=Key data outputs or actions the agent will produce"`
	PotentialDependenciesOrIntegrations []string `json:"potential_dependencies_or_integrations,omitempty" jsonschema:"description=Potential dependencies or integrations needed"`
}
