// Package anthropic implements [ai.Provider] for Anthropic's Messages API.
//
// The primary entry point is [New], which reads CLAUDE_API_KEY (or
// ANTHROPIC_API_KEY) and ANTHROPIC_API_BASE_URL from the environment and uses
// a client with a 120 second timeout. Use [AnthropicProvider.WithAPIKey],
// [AnthropicProvider.WithBaseURL] or [AnthropicProvider.WithHttpClient] to
// configure the provider programmatically.
package anthropic
