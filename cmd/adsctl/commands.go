package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adsops/google-ads-mcp-server/internal/app"
	"github.com/adsops/google-ads-mcp-server/internal/config"
	"github.com/adsops/google-ads-mcp-server/internal/credentials"
	"github.com/adsops/google-ads-mcp-server/internal/mcpclient"
	"github.com/adsops/google-ads-mcp-server/internal/version"
)

type rootOptions struct {
	serverURL string
	token     string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "adsctl",
		Short:         "Operate a Google Ads MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("MCP_SERVER_URL", "http://localhost:8080/mcp"), "MCP HTTP endpoint")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MCP_HTTP_TOKEN"), "Bearer token for the MCP endpoint")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	root.AddCommand(
		newToolsCmd(opts),
		newCallCmd(opts),
		newCheckCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) client() *mcpclient.Client {
	return mcpclient.New(o.serverURL, mcpclient.WithToken(o.token), mcpclient.WithTimeout(o.timeout))
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools a running server advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools, err := opts.client().ListTools(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tools: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, t := range tools {
				desc, _, _ := strings.Cut(t.Description, "\n")
				fmt.Fprintf(out, "%-36s %s\n", t.Name, desc)
			}
			fmt.Fprintf(out, "\n%d tools\n", len(tools))
			return nil
		},
	}
}

type callCmd struct {
	opts *rootOptions
	args string
}

func newCallCmd(opts *rootOptions) *cobra.Command {
	cc := &callCmd{opts: opts}
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool and print its text output",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}
	cmd.Flags().StringVar(&cc.args, "args", "{}", "Tool arguments as a JSON object ('-' reads stdin)")
	return cmd
}

func (cc *callCmd) run(cmd *cobra.Command, args []string) error {
	raw := []byte(cc.args)
	if cc.args == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read arguments: %w", err)
		}
		raw = b
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	res, err := cc.opts.client().CallTool(cmd.Context(), args[0], raw)
	if err != nil {
		return fmt.Errorf("call %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), mcpclient.Text(res))
	if res.IsError {
		return fmt.Errorf("%s reported an error", args[0])
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and reach the Google Ads API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(out, "developer token: %s\n", credentials.Mask(cfg.DeveloperToken))
			fmt.Fprintf(out, "refresh token:   %s (%s)\n", credentials.Mask(cfg.RefreshToken), cfg.RefreshTokenSource)
			if cfg.MCCID != "" {
				fmt.Fprintf(out, "manager account: %s\n", cfg.MCCID)
			}

			l := logrus.New()
			l.SetOutput(io.Discard)
			client, err := app.NewClient(cfg, logrus.NewEntry(l), nil)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			ids, err := client.ListAccessibleCustomers(ctx)
			if err != nil {
				return fmt.Errorf("list accessible customers: %w", err)
			}
			sort.Strings(ids)
			fmt.Fprintf(out, "✅ %d accessible customers: %s\n", len(ids), strings.Join(ids, ", "))
			return nil
		},
	}
}

func newAuthCmd() *cobra.Command {
	var home string
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored refresh token",
	}
	auth.PersistentFlags().StringVar(&home, "home", credentials.HomeDir(), "Server home directory")

	set := &cobra.Command{
		Use:   "set-refresh-token [token]",
		Short: "Store a refresh token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			if err := credentials.PutRefreshToken(home, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored refresh token %s in %s\n", credentials.Mask(strings.TrimSpace(token)), credentials.Path(home))
			return nil
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := credentials.Delete(home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", credentials.Path(home))
			return nil
		},
	}
	auth.AddCommand(set, clearCmd)
	return auth
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "adsctl "+version.Get().String())
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
