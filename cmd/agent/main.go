// Command agent is the extension-side companion process. It mirrors the
// user's timer locally, refreshes the blocklist, and answers block checks
// without a server round trip.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"focusflow/internal/agent"
	"focusflow/internal/blocker"
	"focusflow/internal/timer"
)

var (
	configPath string
	serverURL  string
	token      string
)

func main() {
	root := &cobra.Command{
		Use:           "focusflow-agent",
		Short:         "Local companion for the focusflow timer and blocklist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides config)")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token (overrides config)")

	root.AddCommand(runCmd(), checkCmd(), tokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (agent.Config, error) {
	cfg, err := agent.LoadConfig(configPath)
	if err != nil {
		return agent.Config{}, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if token != "" {
		cfg.Token = token
	}
	return cfg, nil
}

func newClient(cfg agent.Config) *agent.Client {
	return agent.NewClient(cfg.ServerURL, cfg.Token, cfg.RequestTimeout())
}

func runCmd() *cobra.Command {
	var startTask string
	var start bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync, tick, and blocklist loops until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				return fmt.Errorf("no token configured; run the token command first")
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			supervisor := agent.NewSupervisor(newClient(cfg), logger,
				cfg.SyncInterval(), cfg.BlocklistRefresh())

			if start {
				supervisor.Runner().SetTask(startTask)
				supervisor.Runner().Start()
			}

			err = supervisor.Run(ctx)
			if err == context.Canceled {
				logger.Info("agent stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&start, "start", false, "start a focus cycle immediately")
	cmd.Flags().StringVar(&startTask, "task", "", "task label for the started cycle")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <hostname>",
		Short: "Report whether a hostname would be blocked right now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := newClient(cfg)

			ctx := cmd.Context()
			status, err := client.TimerStatus(ctx)
			if err != nil {
				return err
			}
			sites, err := client.BlockedSites(ctx)
			if err != nil {
				return err
			}

			state := timer.FromStatus(*status)
			decision := blocker.Decide(args[0], state.Mode, state.IsRunning, sites)
			if decision.Blocked {
				fmt.Printf("blocked (%s)\n", decision.Domain)
			} else {
				fmt.Println("allowed")
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in and print a long-lived extension token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := agent.NewClient(cfg.ServerURL, "", cfg.RequestTimeout())
			webToken, err := client.Login(ctx, username, password)
			if err != nil {
				return err
			}

			authed := agent.NewClient(cfg.ServerURL, webToken, cfg.RequestTimeout())
			extToken, err := authed.ExtensionToken(ctx)
			if err != nil {
				return err
			}

			fmt.Println(extToken)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}
