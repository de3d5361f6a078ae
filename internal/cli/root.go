// Package cli builds the mirage command tree.
package cli

import (
	"embed"
	"fmt"

	"github.com/arthur-debert/mirage/internal/version"
	"github.com/arthur-debert/mirage/pkg/cobrax/topics"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// globals are the persistent flags every command sees.
type globals struct {
	verbosity int
	format    ui.Format
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "mirage",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().VarP(&g.format, "format", "f", MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "term", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	initTemplateFormatting(rootCmd)

	manager, err := topics.Load(topicFiles, "topics", topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	})
	if err != nil {
		// The topics are embedded; failing here is a build problem
		panic(fmt.Errorf(MsgErrTopics, err))
	}

	rootCmd.AddCommand(newApplyCmd(g))
	rootCmd.AddCommand(newRevertCmd(g))
	rootCmd.AddCommand(newStatusCmd(g))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTopicsCmd(manager))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	manager.Install(rootCmd)

	return rootCmd
}

// reportedError marks an error that was already rendered for the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown to the user by a command.
func Reported(err error) bool {
	_, ok := err.(*reportedError)
	return ok
}

// render shows the outcome of one operation: the result on stdout, or the
// error on stderr.
func (g *globals) render(cmd *cobra.Command, result interface{}, opErr error) error {
	if opErr != nil {
		renderer, err := ui.NewRenderer(g.format, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf(MsgErrRenderer, err)
		}
		if err := renderer.RenderError(opErr); err != nil {
			return opErr
		}
		return &reportedError{err: opErr}
	}

	renderer, err := ui.NewRenderer(g.format, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf(MsgErrRenderer, err)
	}
	return renderer.RenderResult(result)
}
