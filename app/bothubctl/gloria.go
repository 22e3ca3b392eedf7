package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newGloriaCmd() *cobra.Command {
	var (
		key     string
		headers bool
	)

	cmd := &cobra.Command{
		Use:   "gloria [endpoint]",
		Short: "Request an endpoint of the POS API",
		Long:  "Forwards a GET request to the POS API through the bot hub. The endpoint defaults to menu. Without --key the stored restaurant key is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := ""
			if len(args) != 0 {
				endpoint = args[0]
			}

			c, err := connect()
			if err != nil {
				return err
			}

			r, err := c.GloriaProxy(key, endpoint)
			if err != nil {
				return err
			}

			if !r.Success {
				return fmt.Errorf("%s", r.Error)
			}

			out := cmd.OutOrStdout()

			if headers {
				names := make([]string, 0, len(r.Headers))
				for name := range r.Headers {
					names = append(names, name)
				}

				sort.Strings(names)

				for _, name := range names {
					fmt.Fprintf(out, "%s: %s\n", name, r.Headers[name])
				}

				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, r.Data)

			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Restaurant key to use instead of the stored one")
	cmd.Flags().BoolVarP(&headers, "headers", "i", false, "Print the response headers")

	return cmd
}
