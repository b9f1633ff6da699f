package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"pipeline_event","data":{"step":"Spawning log_agent","status":"running"}}`))
	require.NoError(t, err)
	require.Equal(t, TypePipelineEvent, env.Type)
	require.JSONEq(t, `{"step":"Spawning log_agent","status":"running"}`, string(env.Data))
}

func TestParseEnvelope_Malformed(t *testing.T) {
	_, err := ParseEnvelope([]byte(`not json`))
	require.Error(t, err)
}

func TestPipelineEvent_InspectTarget(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"standard", "/inspect/log_agent_1a2b3c", "log_agent_1a2b3c"},
		{"empty", "", ""},
		{"trailing slash", "/inspect/", ""},
		{"no path", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := PipelineEvent{InspectURL: tt.url}
			require.Equal(t, tt.want, ev.InspectTarget())
		})
	}
}

func TestPipelineEvent_Sentinels(t *testing.T) {
	require.True(t, PipelineEvent{Step: "✅ Request complete"}.IsRequestComplete())
	require.False(t, PipelineEvent{Step: "Spawning log_agent"}.IsRequestComplete())

	require.True(t, PipelineEvent{Step: "Destroying log_agent_1a2b"}.IsAgentDestruction())
	require.False(t, PipelineEvent{Step: "Cooldown started"}.IsAgentDestruction())
}

func TestHealthStatus_McpReachable(t *testing.T) {
	require.True(t, HealthStatus{McpServer: "reachable"}.McpReachable())
	require.False(t, HealthStatus{McpServer: "unreachable"}.McpReachable())
	require.False(t, HealthStatus{}.McpReachable())
}

func TestParseTimestamp(t *testing.T) {
	got := ParseTimestamp("2026-08-30T12:34:56.123456")
	require.Equal(t, time.Date(2026, 8, 30, 12, 34, 56, 123456000, time.UTC), got)

	got = ParseTimestamp("2026-08-30T12:34:56")
	require.Equal(t, time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC), got)

	require.True(t, ParseTimestamp("").IsZero())
	require.True(t, ParseTimestamp("yesterday").IsZero())
}
