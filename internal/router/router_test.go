package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"agentdeck/internal/protocol"
)

func envelope(t *testing.T, typ, data string) protocol.Envelope {
	t.Helper()
	return protocol.Envelope{Type: typ, Data: json.RawMessage(data)}
}

func TestRoute_PipelineEvent(t *testing.T) {
	msg := Route(envelope(t, protocol.TypePipelineEvent,
		`{"step":"Spawning log_agent","status":"running","agent_type":"log_agent","agent_id":"log_agent_1"}`))

	ev, ok := msg.(PipelineEventMsg)
	require.True(t, ok)
	require.Equal(t, "Spawning log_agent", ev.Event.Step)
	require.Equal(t, "log_agent", ev.Event.AgentType)
}

func TestRoute_ChatResponse(t *testing.T) {
	msg := Route(envelope(t, protocol.TypeChatResponse,
		`{"message":"Found 3 errors.","agent_type":"log_agent"}`))

	resp, ok := msg.(ChatResponseMsg)
	require.True(t, ok)
	require.Equal(t, "Found 3 errors.", resp.Response.Message)
}

func TestRoute_System(t *testing.T) {
	msg := Route(envelope(t, protocol.TypeSystem,
		`{"message":"Connected to SRE orchestrator","client_id":"c1","agents":["log_agent"]}`))

	sys, ok := msg.(SystemMsg)
	require.True(t, ok)
	require.Equal(t, "Connected to SRE orchestrator", sys.Notice.Message)
	require.Equal(t, []string{"log_agent"}, sys.Notice.Agents)
}

func TestRoute_UnknownTypeIgnored(t *testing.T) {
	require.Nil(t, Route(envelope(t, "metrics_update", `{"cpu":0.4}`)))
}

func TestRoute_MalformedPayloadIgnored(t *testing.T) {
	require.Nil(t, Route(envelope(t, protocol.TypePipelineEvent, `("step")`)))
	require.Nil(t, Route(envelope(t, protocol.TypeChatResponse, `42x`)))
	require.Nil(t, Route(envelope(t, protocol.TypeSystem, `[`)))
}
