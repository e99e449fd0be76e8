package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/kv"
	"tableflip.dev/benchquest/pkg/logging"
)

// openSession loads the config, attaches a logger to the command context and
// opens every store. Callers close the session.
func openSession(cmd *cobra.Command) (context.Context, *app.Session, *kv.FileConfig, error) {
	cmd.SilenceUsage = true

	cfg, err := kv.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.New(os.Stderr, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	sess, err := app.Open(ctx, app.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, sess, cfg, nil
}

// protocolCompletions offers saved protocol ids.
func protocolCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	_, sess, _, err := openSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer sess.Close()

	var ids []string
	for _, p := range sess.Protocols.Protocols() {
		ids = append(ids, p.ID+"\t"+p.Name)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
