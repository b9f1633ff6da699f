// Package api is the REST client for the orchestrator's collaborator
// endpoints: the health check backing the reachability badge and the agent
// detail endpoint backing inspect sessions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
)

// ErrAgentGone is returned when the detail endpoint answers non-success,
// meaning the agent no longer exists.
var ErrAgentGone = errors.New("agent no longer exists")

const (
	requestTimeout = 5 * time.Second

	// System envelopes can arrive in bursts; health probes within this window
	// reuse the cached answer instead of re-hitting the endpoint.
	healthCacheTTL = 5 * time.Second
	healthCacheKey = "health"
)

// Client calls the orchestrator's REST endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
}

// New creates a client for the given base URL (e.g. http://localhost:8000).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   gocache.New(healthCacheTTL, time.Minute),
	}
}

// Health fetches GET /health. Results are cached briefly; only the
// mcp_server field is meaningful to callers.
func (c *Client) Health(ctx context.Context) (protocol.HealthStatus, error) {
	if cached, ok := c.cache.Get(healthCacheKey); ok {
		return cached.(protocol.HealthStatus), nil
	}

	var health protocol.HealthStatus
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return protocol.HealthStatus{}, err
	}
	c.cache.SetDefault(healthCacheKey, health)
	return health, nil
}

// AgentDetail fetches GET /api/agents/{id}: the full lifecycle record of one
// agent. A non-success response means the agent is gone and yields
// ErrAgentGone.
func (c *Client) AgentDetail(ctx context.Context, agentID string) (protocol.AgentDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/agents/"+agentID, nil)
	if err != nil {
		return protocol.AgentDetail{}, fmt.Errorf("building agent detail request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return protocol.AgentDetail{}, fmt.Errorf("fetching agent detail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug(log.CatAPI, "Agent detail non-success", "agent_id", agentID, "status", resp.StatusCode)
		return protocol.AgentDetail{}, ErrAgentGone
	}

	var detail protocol.AgentDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return protocol.AgentDetail{}, fmt.Errorf("decoding agent detail: %w", err)
	}
	return detail, nil
}

// Agents fetches GET /api/agents: the roster of available agent types.
func (c *Client) Agents(ctx context.Context) ([]protocol.AgentInfo, error) {
	var payload struct {
		Agents []protocol.AgentInfo `json:"agents"`
	}
	if err := c.getJSON(ctx, "/api/agents", &payload); err != nil {
		return nil, err
	}
	return payload.Agents, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
