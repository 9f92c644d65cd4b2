package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/solmind-ai/solmind/pkg/api"
)

var rootCmd = &cobra.Command{
	Use:   "solmind",
	Short: "Chat with AI agents through the SolMind backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger(viper.GetString("log-level"))
	},
}

func initLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
	return nil
}

func newBackendClient() (*api.Client, error) {
	options := []api.ClientOption{}
	if wallet := viper.GetString("wallet-address"); wallet != "" {
		options = append(options, api.WithWalletAddress(wallet))
	}
	return api.NewClient(viper.GetString("base-url"), options...)
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "http://localhost:8000", "Backend base URL")
	rootCmd.PersistentFlags().String("wallet-address", "", "Wallet address sent as the identity header")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	for _, flag := range []string{"base-url", "wallet-address", "log-level"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("SOLMIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(newAgentsCommand())
	rootCmd.AddCommand(newChatsCommand())
	rootCmd.AddCommand(newSendCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
