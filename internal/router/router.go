// Package router dispatches inbound stream envelopes to typed Bubble Tea
// messages by their declared type.
package router

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
)

// PipelineEventMsg carries a pipeline_event payload.
type PipelineEventMsg struct {
	Event protocol.PipelineEvent
}

// ChatResponseMsg carries a chat_response payload.
type ChatResponseMsg struct {
	Response protocol.ChatResponse
}

// SystemMsg carries a system payload.
type SystemMsg struct {
	Notice protocol.SystemNotice
}

// Route turns an envelope into its typed message. Unknown envelope types
// return nil so future event kinds pass through harmlessly; malformed
// payloads also return nil and are logged.
func Route(env protocol.Envelope) tea.Msg {
	switch env.Type {
	case protocol.TypeSystem:
		var notice protocol.SystemNotice
		if err := json.Unmarshal(env.Data, &notice); err != nil {
			log.ErrorErr(log.CatRouter, "Malformed system payload", err)
			return nil
		}
		return SystemMsg{Notice: notice}

	case protocol.TypePipelineEvent:
		var event protocol.PipelineEvent
		if err := json.Unmarshal(env.Data, &event); err != nil {
			log.ErrorErr(log.CatRouter, "Malformed pipeline_event payload", err)
			return nil
		}
		return PipelineEventMsg{Event: event}

	case protocol.TypeChatResponse:
		var resp protocol.ChatResponse
		if err := json.Unmarshal(env.Data, &resp); err != nil {
			log.ErrorErr(log.CatRouter, "Malformed chat_response payload", err)
			return nil
		}
		return ChatResponseMsg{Response: resp}

	default:
		log.Debug(log.CatRouter, "Ignoring unknown envelope type", "type", env.Type)
		return nil
	}
}
