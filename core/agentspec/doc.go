// Package agentspec holds the request and record types of the agent
// suggestion service.
//
// [EmpireDescription] and [ExtendedEmpireDescription] are the two accepted
// request shapes. [AgentSpecification] is the typed form of one validated
// reply record; its struct tags drive both [ReplySchema], the JSON Schema
// shown to the model, and [Schema], the declarations the recovery pipeline
// validates against.
package agentspec
