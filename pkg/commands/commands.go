package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "benchquest",
		Short: base.Wrap80("Research protocols, lab timers and a research journal, with quests to keep you at the bench."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	base.AddOutputArg(cmd, oo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addProtocol(topLevel)
	addTimer(topLevel)
	addQuest(topLevel)
	addCompanion(topLevel)
	addJournal(topLevel)
	addSettings(topLevel)
	addStatus(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// output is the format runners understand.
func output() string {
	if oo.JSON {
		return "json"
	}
	return ""
}
