package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/quickshop/bothub/http/api"

	"github.com/spf13/cobra"
)

func newPanelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "panels",
		Aliases: []string{"panel"},
		Short:   "Inspect and configure the panels",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all panels",
			Args:  cobra.NoArgs,
			RunE:  runPanelsList,
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a panel with its settings",
			Args:  cobra.ExactArgs(1),
			RunE:  runPanelsGet,
		},
		&cobra.Command{
			Use:   "set <id> <key=value>...",
			Short: "Change settings of a panel",
			Args:  cobra.MinimumNArgs(2),
			RunE:  runPanelsSet,
		},
		&cobra.Command{
			Use:   "activate <id>",
			Short: "Make a panel the one that reacts to actions",
			Args:  cobra.ExactArgs(1),
			RunE:  runPanelsActivate,
		},
	)

	return cmd
}

func runPanelsList(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return err
	}

	panels, err := c.PanelList()
	if err != nil {
		return err
	}

	for _, p := range panels {
		marker := " "
		if p.Active {
			marker = "*"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", marker, p.ID, p.Title)
	}

	return nil
}

func runPanelsGet(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return err
	}

	p, err := c.Panel(args[0])
	if err != nil {
		return err
	}

	printPanel(cmd.OutOrStdout(), p)

	return nil
}

func runPanelsSet(cmd *cobra.Command, args []string) error {
	settings := api.PanelSettings{}

	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found || len(key) == 0 {
			return fmt.Errorf("invalid setting %q, expected key=value", arg)
		}

		settings[key] = value
	}

	c, err := connect()
	if err != nil {
		return err
	}

	p, err := c.PanelSettings(args[0], settings)
	if err != nil {
		if e, ok := err.(api.Error); ok {
			return fmt.Errorf("%s", e.Summary())
		}

		return err
	}

	printPanel(cmd.OutOrStdout(), p)

	return nil
}

func runPanelsActivate(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return err
	}

	if err := c.PanelActivate(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is active\n", args[0])

	return nil
}

func printPanel(out io.Writer, p api.Panel) {
	state := "inactive"
	if p.Active {
		state = "active"
	}

	fmt.Fprintf(out, "%s (%s, %s)\n", p.Title, p.ID, state)

	for _, f := range p.Fields {
		value := f.Value
		if len(value) == 0 {
			value = "(" + f.Default + ")"
		}

		fmt.Fprintf(out, "  %-12s %s\n", f.Key, value)
	}
}

func newActionCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:       "action <test-connection|fetch-data|show-snippet>",
		Short:     "Ask a panel to perform an action",
		Long:      "Publishes an action. Without --target the active panel is addressed. The panel reports its progress to the console.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"test-connection", "fetch-data", "show-snippet"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}

			result, err := c.Action(args[0], target)
			if err != nil {
				return err
			}

			if result.Delivered == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s dropped, %s is not active\n", result.Kind, result.Target)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s sent to %s\n", result.Kind, result.Target)

			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "ID of the panel to address")

	return cmd
}
