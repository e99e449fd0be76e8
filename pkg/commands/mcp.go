package commands

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/commands/options"
	"tableflip.dev/benchquest/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	mo := &options.MCPOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes protocols, quests, the lab companion and the
research journal to assistants. The HTTP transport also serves /metrics.`,
		Example: `
benchquest mcp --transport stdio
benchquest mcp --http-port 0
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := mcp.Runner{
				Name:             "benchquest",
				Version:          version,
				HTTPEndpointPath: mo.EndpointPath(),
				HTTPServerCert:   strings.TrimSpace(mo.TLSCert),
				HTTPServerKey:    strings.TrimSpace(mo.TLSKey),
			}

			switch t := strings.ToLower(strings.TrimSpace(mo.Transport)); t {
			case "", string(mcp.TransportHTTP):
				addr, err := mo.ListenAddr()
				if err != nil {
					return err
				}
				runner.Transport = mcp.TransportHTTP
				runner.HTTPListenAddr = addr
				runner.OnHTTPListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", mo.URL(a))
				}
			case string(mcp.TransportStdio):
				runner.Transport = mcp.TransportStdio
			default:
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", t)
			}

			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			runner.Session = sess
			return runner.Do(ctx)
		},
	}

	options.AddMCPArgs(cmd, mo)

	topLevel.AddCommand(cmd)
}
