package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	verbose    bool
	build      AppBuilder
}

func (o *rootOptions) options() Options {
	return Options{ConfigFile: o.configFile, Verbose: o.verbose}
}

// NewRootCommand assembles the devlog command tree around build.
func NewRootCommand(build AppBuilder) *cobra.Command {
	opts := &rootOptions{build: build}

	root := &cobra.Command{
		Use:   "devlog",
		Short: "Post one day of a development log to LinkedIn each day",
		Long: `devlog keeps a queue of daily work items, turns the next one into a
LinkedIn post with an LLM, and publishes it on a schedule.

Configuration comes from environment variables (DATABASE_URL, OPENAI_API_KEY,
LINKEDIN_ACCESS_TOKEN, LINKEDIN_USER_URN, ...) or a YAML file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "human-readable debug logging")

	root.AddCommand(
		newServeCommand(opts),
		newRunOnceCommand(opts),
		newSeedCommand(opts),
		newQueueCommand(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand(NewApp)
	if err := cmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
