package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","mcp_server":"reachable"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	health, err := c.Health(context.Background())
	require.NoError(t, err)
	require.True(t, health.McpReachable())
}

func TestHealth_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"healthy","mcp_server":"reachable"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Health(context.Background())
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load(), "second probe is served from cache")
}

func TestHealth_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Health(context.Background())
	require.Error(t, err)
}

func TestAgentDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/agents/log_agent_1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"agent_id": "log_agent_1",
			"agent_type": "log_agent",
			"status": "executing",
			"runtime_class_name": "LogAgent",
			"memory_object_id": 140234,
			"created_at": "2026-08-30T12:00:00",
			"events": [{"step": "Spawning log_agent"}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	detail, err := c.AgentDetail(context.Background(), "log_agent_1")
	require.NoError(t, err)
	require.Equal(t, "log_agent", detail.AgentType)
	require.Equal(t, "LogAgent", detail.RuntimeClass)
	require.Equal(t, uint64(140234), detail.MemoryObjectID)
	require.Len(t, detail.Events, 1)
}

func TestAgentDetail_GoneOnNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.AgentDetail(context.Background(), "log_agent_1")
	require.ErrorIs(t, err, ErrAgentGone)
}

func TestAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/agents", r.URL.Path)
		_, _ = w.Write([]byte(`{"agents":[{"name":"Log Agent","type":"log_agent","icon":"📋"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	agents, err := c.Agents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, "log_agent", agents[0].Type)
}
