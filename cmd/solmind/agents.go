package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solmind-ai/solmind/pkg/agents"
	"github.com/solmind-ai/solmind/pkg/api"
)

func agentCreateRequest(agent *agents.Agent) api.CreateAgentRequest {
	return api.CreateAgentRequest{
		Name:        agent.Name,
		DisplayName: agent.DisplayName,
		Platform:    agent.Platform,
		APIKey:      agent.PendingCredential,
		Model:       agent.Model,
	}
}

func newAgentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agents",
	}
	cmd.AddCommand(newAgentsListCommand())
	cmd.AddCommand(newAgentsAddCommand())
	return cmd
}

func newAgentsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := agents.NewRegistryWithBuiltins()

			// The backend's agents are merged over the builtins; an
			// unreachable backend degrades to the builtins alone.
			client, err := newBackendClient()
			if err != nil {
				return err
			}
			infos, err := client.ListAgents(cmd.Context())
			if err != nil {
				log.Warn().Err(err).Msg("failed to list backend agents, showing builtins only")
			}
			for _, info := range infos {
				registry.Register(&agents.Agent{
					ID:                   info.ID,
					Name:                 info.Name,
					DisplayName:          info.DisplayName,
					Platform:             info.Platform,
					CredentialConfigured: info.APIKeyConfigured,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer func() {
				_ = w.Flush()
			}()
			fmt.Fprintln(w, "ID\tNAME\tPLATFORM\tKEY")
			for _, agent := range registry.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", agent.ID, agent.DisplayName, agent.Platform, agent.CredentialConfigured)
			}
			return nil
		},
	}
}

func newAgentsAddCommand() *cobra.Command {
	var platform, apiKey, model string

	cmd := &cobra.Command{
		Use:   "add <display-name>",
		Short: "Register a custom agent with the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBackendClient()
			if err != nil {
				return err
			}

			agent := agents.NewCustomAgent(args[0], platform, apiKey, model)
			created, err := client.CreateAgent(cmd.Context(), agentCreateRequest(agent))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created agent %s (%s)\n", created.ID, created.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Provider platform, for instance OpenAI or Anthropic")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider API key, sent once at creation")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}
