// Package protocol defines the wire types exchanged with the agent
// orchestrator: the WebSocket stream envelope and its payloads, the single
// outbound request, and the REST inspection shapes.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Envelope types on the inbound stream.
const (
	TypeSystem        = "system"
	TypePipelineEvent = "pipeline_event"
	TypeChatResponse  = "chat_response"
)

// Step statuses on a pipeline event.
const (
	StepPending   = "pending"
	StepRunning   = "running"
	StepCompleted = "completed"
	StepError     = "error"
)

// OrchestratorAgentType is the coordinating agent role. Events carrying it
// never become the "active agent".
const OrchestratorAgentType = "orchestrator"

// Sentinel substrings on human-readable step labels. The orchestrator signals
// request completion and agent teardown only through its step text, so these
// must match the upstream event contract exactly.
const (
	SentinelRequestComplete = "Request complete"
	SentinelDestroying      = "Destroying"
)

// Envelope is the framing for every inbound stream message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEnvelope decodes a raw frame into an Envelope.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	return env, nil
}

// PipelineEvent is the payload of a "pipeline_event" envelope: one reported
// unit of agent progress within a single query's execution.
type PipelineEvent struct {
	Step              string `json:"step"`
	Status            string `json:"status"`
	Detail            string `json:"detail,omitempty"`
	InspectURL        string `json:"inspect_url,omitempty"`
	CooldownRemaining *int   `json:"cooldown_remaining,omitempty"`
	AgentType         string `json:"agent_type,omitempty"`
	AgentID           string `json:"agent_id,omitempty"`
	Timestamp         string `json:"timestamp,omitempty"`
}

// InspectTarget extracts the agent id from an inspect URL of the form
// /inspect/{agentId}. Returns "" when the event carries no inspect affordance.
func (e PipelineEvent) InspectTarget() string {
	if e.InspectURL == "" {
		return ""
	}
	idx := strings.LastIndex(e.InspectURL, "/")
	if idx < 0 || idx == len(e.InspectURL)-1 {
		return ""
	}
	return e.InspectURL[idx+1:]
}

// IsRequestComplete reports whether the step label signals that the overall
// request finished.
func (e PipelineEvent) IsRequestComplete() bool {
	return strings.Contains(e.Step, SentinelRequestComplete)
}

// IsAgentDestruction reports whether the step label signals that the agent is
// being torn down.
func (e PipelineEvent) IsAgentDestruction() bool {
	return strings.Contains(e.Step, SentinelDestroying)
}

// ChatResponse is the payload of a "chat_response" envelope.
type ChatResponse struct {
	Message   string `json:"message"`
	AgentType string `json:"agent_type"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SystemNotice is the payload of a "system" envelope, sent on connect.
type SystemNotice struct {
	Message  string   `json:"message"`
	ClientID string   `json:"client_id,omitempty"`
	Agents   []string `json:"agents,omitempty"`
}

// ChatRequest is the only message type the client sends.
type ChatRequest struct {
	Message string `json:"message"`
}

// HealthStatus is the response of GET /health. Only McpServer is consumed,
// to flip the reachability badge.
type HealthStatus struct {
	Status    string   `json:"status"`
	McpServer string   `json:"mcp_server"`
	Timestamp string   `json:"timestamp,omitempty"`
	Agents    []string `json:"agents_available,omitempty"`
}

// McpReachable reports whether the MCP collaborator is reachable.
func (h HealthStatus) McpReachable() bool {
	return h.McpServer == "reachable"
}

// AgentEvent is one entry of an agent's audit trail.
type AgentEvent struct {
	Step      string `json:"step"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AgentDetail is the response of GET /api/agents/{id}: the full lifecycle
// record of one ephemeral agent, live or terminated.
type AgentDetail struct {
	AgentID         string       `json:"agent_id"`
	AgentType       string       `json:"agent_type"`
	AgentIcon       string       `json:"agent_icon,omitempty"`
	Description     string       `json:"description,omitempty"`
	Status          string       `json:"status"`
	RuntimeClass    string       `json:"runtime_class_name,omitempty"`
	MemoryObjectID  uint64       `json:"memory_object_id,omitempty"`
	ProcessID       int          `json:"process_id,omitempty"`
	ThreadID        int64        `json:"thread_id,omitempty"`
	ThreadName      string       `json:"thread_name,omitempty"`
	CreatedAt       string       `json:"created_at"`
	CompletedAt     string       `json:"completed_at,omitempty"`
	DurationSeconds *float64     `json:"duration_seconds,omitempty"`
	Action          string       `json:"action,omitempty"`
	ResultStatus    string       `json:"result_status,omitempty"`
	ResultSizeBytes int          `json:"result_size_bytes,omitempty"`
	Events          []AgentEvent `json:"events"`
}

// Agent lifecycle statuses reported by the detail endpoint.
const (
	AgentActive      = "active"
	AgentExecuting   = "executing"
	AgentCoolingDown = "cooling_down"
	AgentDestroyed   = "destroyed"
)

// AgentInfo describes one available agent type from GET /api/agents.
type AgentInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// ParseTimestamp decodes the orchestrator's naive ISO-8601 instants, which
// carry no zone and are assumed UTC. Returns the zero time on failure.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
