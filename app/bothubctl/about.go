package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show information about the bot hub",
		Args:  cobra.NoArgs,
		RunE:  runAbout,
	}
}

func runAbout(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return err
	}

	about, err := c.About(true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s)\n", about.App, about.Name)
	fmt.Fprintf(out, "  id:       %s\n", about.ID)
	fmt.Fprintf(out, "  version:  %s %s\n", about.Version.Number, about.Version.Arch)
	fmt.Fprintf(out, "  created:  %s\n", about.CreatedAt)
	fmt.Fprintf(out, "  uptime:   %ds\n", about.Uptime)
	fmt.Fprintf(out, "  runtime:  %d goroutines, %d/%d cpus\n", about.Runtime.Goroutines, about.Runtime.GOMAXPROCS, about.Runtime.NCPU)

	return nil
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the bot hub is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			rtt, err := c.Ping()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pong from %s in %s\n", c.Address(), rtt)

			return nil
		},
	}
}

func newLogCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the recent application log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			format := "console"
			if raw {
				format = "raw"
			}

			lines, err := c.Log(format)
			if err != nil {
				return err
			}

			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the log events as JSON")

	return cmd
}
