package main

import (
	"fmt"
	"io"
	"os"

	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/client"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var severityColors = map[string]string{
	"info":    "\033[36m",
	"success": "\033[32m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

// printer writes console entries, colored by severity if out is a terminal.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out io.Writer) *printer {
	p := &printer{
		out: out,
	}

	if f, ok := out.(*os.File); ok {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return p
}

func (p *printer) print(e api.ConsoleEntry) {
	severity := fmt.Sprintf("%-7s", e.Severity)

	if p.color {
		if c, ok := severityColors[e.Severity]; ok {
			severity = c + severity + "\033[0m"
		}
	}

	fmt.Fprintf(p.out, "%s %s %s\n", e.Timestamp, severity, e.Message)
}

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Read and write the status console",
	}

	cmd.AddCommand(
		newConsoleListCmd(),
		newConsoleFollowCmd(),
		newConsoleAppendCmd(),
		newConsoleClearCmd(),
	)

	return cmd
}

func addFilterFlags(cmd *cobra.Command, opts *client.ConsoleListOptions) {
	cmd.Flags().StringSliceVarP(&opts.Severities, "severity", "s", nil, "Only show entries with these severities")
	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "Only show entries whose message matches this glob pattern")
}

func newConsoleListCmd() *cobra.Command {
	opts := client.ConsoleListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the console entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			entries, err := c.ConsoleList(opts)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			for _, e := range entries {
				p.print(e)
			}

			return nil
		},
	}

	addFilterFlags(cmd, &opts)

	return cmd
}

func newConsoleFollowCmd() *cobra.Command {
	opts := client.ConsoleListOptions{}

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Print console entries as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			events, err := c.ConsoleEvents(cmd.Context(), opts)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())

			for event := range events {
				if event.Event == "list" {
					fmt.Fprintln(cmd.OutOrStdout(), "--")
				}

				for _, e := range event.Entries {
					p.print(e)
				}
			}

			return nil
		},
	}

	addFilterFlags(cmd, &opts)

	return cmd
}

func newConsoleAppendCmd() *cobra.Command {
	var severity string

	cmd := &cobra.Command{
		Use:   "append <message>",
		Short: "Append a message to the console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			entry, err := c.ConsoleAppend(args[0], severity)
			if err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).print(entry)

			return nil
		},
	}

	cmd.Flags().StringVarP(&severity, "severity", "s", "info", "Severity of the message (info, success, warning, error)")

	return cmd
}

func newConsoleClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all console entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			return c.ConsoleClear()
		},
	}
}
