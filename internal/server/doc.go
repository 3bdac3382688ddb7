// Package server exposes the suggestion service over HTTP.
//
// Routes:
//
//	GET  /                         welcome document
//	GET  /health                   liveness
//	POST /mcp                      placeholder for the MCP protocol
//	POST /suggest-agents           EmpireDescription -> []AgentSpecification
//	POST /suggest-agents-extended  ExtendedEmpireDescription -> []AgentSpecification
//	POST /recover                  raw model reply -> recovery result
//	GET  /metrics                  Prometheus exposition, when configured
//
// Every response carries X-Request-ID; an incoming value is reused as the
// correlation id of the call.
package server
