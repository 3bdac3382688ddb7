package anthropic

import (
	"errors"
	"strings"

	"github.com/leofalp/agentswarm/providers/ai"
)

// DefaultMaxTokens is sent when the request does not set a limit.
const DefaultMaxTokens = 4000

var errNoTextContent = errors.New("response has no text content block")

// requestToAnthropic converts an ai.ChatRequest into the Messages wire
// format. System-role messages are folded into the top-level system field.
func requestToAnthropic(request ai.ChatRequest) anthropicRequest {
	req := anthropicRequest{
		Model:     request.Model,
		MaxTokens: DefaultMaxTokens,
	}

	system := []string{}
	if request.SystemPrompt != "" {
		system = append(system, request.SystemPrompt)
	}

	for _, msg := range request.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			system = append(system, msg.Content)
		case ai.RoleAssistant:
			req.Messages = append(req.Messages, textMessage("assistant", msg.Content))
		default:
			req.Messages = append(req.Messages, textMessage("user", msg.Content))
		}
	}
	req.System = strings.Join(system, "\n\n")

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.MaxTokens > 0 {
			req.MaxTokens = cfg.MaxTokens
		}
		if cfg.Temperature > 0 {
			temp := float64(cfg.Temperature)
			req.Temperature = &temp
		}
	}
	return req
}

func textMessage(role, text string) anthropicMessage {
	return anthropicMessage{Role: role, Content: []anthropicContentBlock{{Type: "text", Text: text}}}
}

// anthropicToGeneric maps a Messages response onto ai.ChatResponse. The
// reply is the first text block; a response without one is an error.
func anthropicToGeneric(response anthropicResponse) (*ai.ChatResponse, error) {
	result := &ai.ChatResponse{
		Id:           response.ID,
		Model:        response.Model,
		FinishReason: mapStopReason(response.StopReason),
		Usage: &ai.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
			TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
		},
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			result.Content = block.Text
			return result, nil
		}
	}
	return nil, errNoTextContent
}

// mapStopReason converts an Anthropic stop_reason value to the canonical
// finish reason used by ai.ChatResponse.
func mapStopReason(stopReason string) string {
	if stopReason == "max_tokens" {
		return ai.FinishReasonLength
	}
	return ai.FinishReasonStop
}
