package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solmind-ai/solmind/pkg/agents"
	"github.com/solmind-ai/solmind/pkg/conversation"
	"github.com/solmind-ai/solmind/pkg/events"
	"github.com/solmind-ai/solmind/pkg/helpers"
	"github.com/solmind-ai/solmind/pkg/session"
)

func newSendCommand() *cobra.Command {
	var agentRef, chatID string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message and stream the reply",
		Long: `Send a message to an agent and stream the assistant's reply to stdout.

Without --chat a new chat is created on first use; the canonical chat
identifier is printed so the conversation can be continued.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBackendClient()
			if err != nil {
				return err
			}

			routerOptions := []events.EventRouterOption{}
			if verbose {
				routerOptions = append(routerOptions, events.WithVerbose(true))
			}
			router, err := events.NewEventRouter(routerOptions...)
			if err != nil {
				return errors.Wrap(err, "failed to create event router")
			}
			defer func() {
				_ = router.Close()
			}()

			publisher := helpers.CorrelationPublisherDecorator{Publisher: router.Publisher}
			chatSink := events.NewWatermillSink(publisher, events.ChatTopic)
			reconciliationSink := events.NewWatermillSink(publisher, events.ReconciliationTopic)
			router.AddHandler("chat-printer", events.ChatTopic, events.StepPrinterFunc("", cmd.OutOrStdout()))

			registry := agents.NewRegistryWithBuiltins()
			store := conversation.NewStore()
			bridge := session.NewBridge(store, reconciliationSink)
			resolver := session.NewResolver(registry, store, client, bridge)
			driver := session.NewDriver(resolver, store, client, chatSink)

			selection := session.NewSelection()
			router.AddHandler("selection", events.ReconciliationTopic, selection.Handler())

			if chatID == "" {
				chatID = conversation.NewProvisionalID()
			}

			eg := errgroup.Group{}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			eg.Go(func() error {
				defer cancel()
				return router.Run(ctx)
			})

			var result *session.SendResult
			eg.Go(func() error {
				defer cancel()
				<-router.Running()

				agent, err := registry.Resolve(agentRef)
				if err != nil {
					return err
				}
				selection.Set(agent.Name, chatID)

				if !conversation.IsProvisionalID(chatID) {
					if _, err := driver.LoadHistory(ctx, agentRef, chatID); err != nil {
						return err
					}
				}

				result, err = driver.Send(ctx, agentRef, chatID, args[0])
				return err
			})

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if result == nil {
				return nil
			}

			log.Debug().
				Str("agent_id", result.AgentID).
				Str("chat_id", result.ChatID).
				Msg("send completed")
			fmt.Fprintf(cmd.ErrOrStderr(), "chat: %s\n", result.ChatID)
			return nil
		},
	}
	cmd.Flags().StringVar(&agentRef, "agent", "claude", "Agent to talk to, by id, name or display name")
	cmd.Flags().StringVar(&chatID, "chat", "", "Chat to continue; omit to start a new one")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose event router logging")
	return cmd
}
