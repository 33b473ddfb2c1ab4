package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ffarham/web-server/pkg/client"
	"github.com/ffarham/web-server/pkg/logging"
	"github.com/ffarham/web-server/pkg/output"
	"github.com/ffarham/web-server/pkg/request"
	"github.com/spf13/cobra"
)

// newGetCmd creates the probe command that fetches one document from a running server
func newGetCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		raw     bool
		noColor bool
	)

	getCmd := &cobra.Command{
		Use:   "get [uri]",
		Short: "Request a document from a running server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := "/"
			if len(args) == 1 {
				uri = args[0]
			}

			cfg := root.cfg
			if addr != "" {
				cfg.Client.Addr = addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			c := client.NewFromConfig(cfg, logging.WithComponent("client"))
			out := cmd.OutOrStdout()

			if raw {
				text, err := c.Do(ctx, fmt.Sprintf("%s %s %s\r\n\r\n", request.MethodGet, uri, request.Version11))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, text)
				return err
			}

			reply, err := c.Get(ctx, uri)
			if err != nil {
				return err
			}
			return output.NewTerminalFormatter(!noColor).WriteReply(out, reply)
		},
	}

	getCmd.Flags().StringVar(&addr, "addr", "", "Server address as host:port (overrides config)")
	getCmd.Flags().BoolVar(&raw, "raw", false, "Print the reply exactly as received")
	getCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return getCmd
}
