package agentspec

import (
	"fmt"

	"github.com/leofalp/agentswarm/core/recovery"
	"github.com/leofalp/agentswarm/internal/jsonschema"
)

var (
	// ReplySchema is the JSON Schema of the array the model must return.
	ReplySchema = mustReplySchema()
	// Schema is the record schema replies are validated against.
	Schema = mustRecordSchema(ReplySchema.Items)
)

func mustReplySchema() *jsonschema.Schema {
	item, err := jsonschema.Generate[AgentSpecification]()
	if err != nil {
		panic(fmt.Sprintf("agentspec: %v", err))
	}
	return jsonschema.ArrayOf(item, "Agent specifications suggested for the empire")
}

// RecordSchema converts an object JSON Schema into the validator's field
// declarations, keeping declaration order.
func RecordSchema(object *jsonschema.Schema) (recovery.Schema, error) {
	schema := recovery.Schema{Name: object.Title}
	for _, name := range object.PropertyOrder {
		prop := object.Properties[name]

		var kind recovery.FieldType
		switch {
		case prop.Type == "string":
			kind = recovery.FieldString
		case prop.Type == "array" && prop.Items != nil && prop.Items.Type == "string":
			kind = recovery.FieldStringList
		default:
			return recovery.Schema{}, fmt.Errorf("property %q: unsupported type %q", name, prop.Type)
		}

		schema.Fields = append(schema.Fields, recovery.Field{
			Name:     name,
			Type:     kind,
			Required: object.IsRequired(name),
		})
	}
	return schema, nil
}

func mustRecordSchema(object *jsonschema.Schema) recovery.Schema {
	schema, err := RecordSchema(object)
	if err != nil {
		panic(fmt.Sprintf("agentspec: %v", err))
	}
	return schema
}

// FromRecord projects a validated record onto AgentSpecification.
func FromRecord(r recovery.Record) AgentSpecification {
	return AgentSpecification{
		AgentID:                             r.String("agent_id"),
		AgentName:                           r.String("agent_name"),
		AgentPurposeAndTasks:                r.String("agent_purpose_and_tasks"),
		LinkedEmpireNeedOrComponent:         r.String("linked_empire_need_or_component"),
		PrimaryDomainCategory:               r.String("primary_domain_category"),
		SuggestedTechnicalApproach:          r.String("suggested_technical_approach"),
		EstimatedComplexityToBuild:          r.String("estimated_complexity_to_build"),
		KeyDataInputs:                       r.Strings("key_data_inputs"),
		KeyDataOutputsOrActions:             r.Strings("key_data_outputs_or_actions"),
		PotentialDependenciesOrIntegrations: r.Strings("potential_dependencies_or_integrations"),
	}
}

// FromRecords projects records in order.
func FromRecords(records []recovery.Record) []AgentSpecification {
	specs := make([]AgentSpecification, len(records))
	for i, r := range records {
		specs[i] = FromRecord(r)
	}
	return specs
}
