// Command bothubctl controls a running bot hub over its HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quickshop/bothub/app"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/client"

	"github.com/spf13/cobra"
)

var (
	globalAddress string
	globalTimeout time.Duration
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if e, ok := err.(api.Error); ok {
			fmt.Fprintf(os.Stderr, "error: %s (%d)\n", e.Summary(), e.Code)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()

	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bothubctl",
		Short:         "Control a running " + app.Description,
		Version:       app.Version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	address := os.Getenv("BOTHUB_ADDRESS")
	if len(address) == 0 {
		address = "http://127.0.0.1:8080"
	}

	rootCmd.PersistentFlags().StringVarP(&globalAddress, "address", "a", address, "Address of the bot hub (env BOTHUB_ADDRESS)")
	rootCmd.PersistentFlags().DurationVar(&globalTimeout, "timeout", 15*time.Second, "Timeout for a single request")

	rootCmd.AddCommand(
		newAboutCmd(),
		newPingCmd(),
		newLogCmd(),
		newConsoleCmd(),
		newPanelsCmd(),
		newActionCmd(),
		newGloriaCmd(),
	)

	return rootCmd
}

func connect() (client.RestClient, error) {
	c, err := client.New(client.Config{
		Address: globalAddress,
		Timeout: globalTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", globalAddress, err)
	}

	return c, nil
}
