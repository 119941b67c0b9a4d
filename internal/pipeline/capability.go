package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Capability is the external classification oracle behind a narrow
// request/response contract. The pipeline's own logic stays deterministic;
// everything non-deterministic goes through this interface so stages can be
// tested with a stub.
type Capability interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type agentCapability struct {
	cfg gaconfig.AgentConfig
}

// NewAgentCapability adapts an agent configuration into a Capability.
// An agent is created per call so concurrent stages never share client state.
func NewAgentCapability(cfg gaconfig.AgentConfig) Capability {
	return &agentCapability{cfg: cfg}
}

func (c *agentCapability) Complete(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	return resp.Content(), nil
}
