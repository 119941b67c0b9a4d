package config_test

import (
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/loom/internal/config"
)

func TestFinalizeAgent(t *testing.T) {
	t.Run("defaults fill an empty config", func(t *testing.T) {
		c := gaconfig.AgentConfig{}

		if err := config.FinalizeAgent(&c); err != nil {
			t.Fatalf("FinalizeAgent error: %v", err)
		}

		if c.Name == "" {
			t.Error("Name not defaulted")
		}
		if c.Client == nil || c.Client.Provider == nil {
			t.Fatal("Client.Provider not defaulted")
		}
		if c.Client.Provider.Name == "" {
			t.Error("provider name not defaulted")
		}
		if c.Client.Provider.Model == nil {
			t.Error("model not defaulted")
		}
	})

	t.Run("configured values survive defaulting", func(t *testing.T) {
		c := gaconfig.AgentConfig{
			Name: "loom-agent",
			Client: &gaconfig.ClientConfig{
				Provider: &gaconfig.ProviderConfig{
					Name:    "azure",
					BaseURL: "https://example.openai.azure.com",
					Model:   &gaconfig.ModelConfig{Name: "gpt-4o"},
				},
			},
		}

		if err := config.FinalizeAgent(&c); err != nil {
			t.Fatalf("FinalizeAgent error: %v", err)
		}

		if c.Name != "loom-agent" {
			t.Errorf("Name = %q", c.Name)
		}
		if c.Client.Provider.Name != "azure" {
			t.Errorf("provider = %q", c.Client.Provider.Name)
		}
		if c.Client.Provider.Model.Name != "gpt-4o" {
			t.Errorf("model = %q", c.Client.Provider.Model.Name)
		}
	})

	t.Run("environment overrides provider and model", func(t *testing.T) {
		t.Setenv(config.EnvAgentProviderName, "azure")
		t.Setenv(config.EnvAgentBaseURL, "https://env.openai.azure.com")
		t.Setenv(config.EnvAgentModelName, "gpt-4o-mini")
		t.Setenv(config.EnvAgentToken, "secret")
		t.Setenv(config.EnvAgentDeployment, "loom")

		c := gaconfig.AgentConfig{}
		if err := config.FinalizeAgent(&c); err != nil {
			t.Fatalf("FinalizeAgent error: %v", err)
		}

		provider := c.Client.Provider
		if provider.Name != "azure" {
			t.Errorf("provider = %q", provider.Name)
		}
		if provider.BaseURL != "https://env.openai.azure.com" {
			t.Errorf("base url = %q", provider.BaseURL)
		}
		if provider.Model.Name != "gpt-4o-mini" {
			t.Errorf("model = %q", provider.Model.Name)
		}
		if provider.Options["token"] != "secret" {
			t.Errorf("token option = %v", provider.Options["token"])
		}
		if provider.Options["deployment"] != "loom" {
			t.Errorf("deployment option = %v", provider.Options["deployment"])
		}
	})
}
