package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAdd_NewestFirst(t *testing.T) {
	l := New()
	l.Add(Item{AgentType: "log_agent", DurationSeconds: 1.2})
	l.Add(Item{AgentType: "health_agent", DurationSeconds: 0.8})

	items := l.Items()
	require.Len(t, items, 2)
	require.Equal(t, "health_agent", items[0].AgentType)
	require.Equal(t, "log_agent", items[1].AgentType)
}

func TestAdd_EvictsOldestAtCapacity(t *testing.T) {
	l := New()
	for i := 0; i < Capacity+5; i++ {
		l.Add(Item{AgentType: fmt.Sprintf("agent_%d", i)})
	}

	items := l.Items()
	require.Len(t, items, Capacity)
	require.Equal(t, fmt.Sprintf("agent_%d", Capacity+4), items[0].AgentType, "newest survives")
	require.Equal(t, "agent_5", items[Capacity-1].AgentType, "oldest five evicted")
}

func TestRestore_TrimsToCapacity(t *testing.T) {
	var items []Item
	for i := 0; i < Capacity+10; i++ {
		items = append(items, Item{AgentType: fmt.Sprintf("agent_%d", i)})
	}

	l := Restore(items)
	require.Equal(t, Capacity, l.Len())
	require.Equal(t, "agent_0", l.Items()[0].AgentType, "restore keeps the head of the persisted order")
}

func TestItems_ReturnsCopy(t *testing.T) {
	l := New()
	l.Add(Item{AgentType: "log_agent"})

	items := l.Items()
	items[0].AgentType = "mutated"
	require.Equal(t, "log_agent", l.Items()[0].AgentType)
}

func TestLedger_BoundedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := New()
		n := rapid.IntRange(0, 100).Draw(t, "adds")
		for i := 0; i < n; i++ {
			l.Add(Item{
				AgentType:       rapid.SampledFrom([]string{"log_agent", "health_agent", "trace_agent"}).Draw(t, "type"),
				DurationSeconds: rapid.Float64Range(0, 300).Draw(t, "duration"),
				CompletedAt:     time.Now(),
			})

			items := l.Items()
			if len(items) > Capacity {
				t.Fatalf("ledger exceeded capacity: %d", len(items))
			}
			if want := min(i+1, Capacity); len(items) != want {
				t.Fatalf("ledger length %d, want %d", len(items), want)
			}
		}
	})
}
