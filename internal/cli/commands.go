package cli

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/mirage/internal/version"
	"github.com/arthur-debert/mirage/pkg/cobrax/topics"
	"github.com/arthur-debert/mirage/pkg/config"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/mirage"
	"github.com/spf13/cobra"
)

func targetArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newApplyCmd(g *globals) *cobra.Command {
	var (
		dryRun     bool
		skipHidden bool
		ignore     []string
	)

	cmd := &cobra.Command{
		Use:     "apply [path]",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := targetArg(args)
			logger := logging.GetLogger("cli.apply")
			logger.Info().Str("target", target).Bool("dryRun", dryRun).Msg("Starting apply")

			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("skip-hidden") {
				overrides["scan.skip_hidden"] = skipHidden
			}
			if cmd.Flags().Changed("ignore") {
				overrides["scan.ignore"] = ignore
			}
			cfg, err := config.Load(config.LoadOptions{TargetDir: target, Overrides: overrides})
			if err != nil {
				return g.render(cmd, nil, err)
			}

			result, err := mirage.Apply(mirage.Options{Path: target, DryRun: dryRun, Config: cfg})
			if err != nil {
				return g.render(cmd, nil, err)
			}
			return g.render(cmd, result, nil)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, MsgFlagSkipHidden)
	cmd.Flags().StringSliceVarP(&ignore, "ignore", "i", nil, MsgFlagIgnore)

	return cmd
}

func newRevertCmd(g *globals) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "revert [path]",
		Short: MsgRevertShort,
		Long:  MsgRevertLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := mirage.Revert(mirage.Options{Path: targetArg(args), DryRun: dryRun})
			if err != nil {
				return g.render(cmd, nil, err)
			}
			return g.render(cmd, result, nil)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)

	return cmd
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status [path]",
		Short: MsgStatusShort,
		Long:  MsgStatusLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := mirage.Status(mirage.Options{Path: targetArg(args)})
			if err != nil {
				return g.render(cmd, nil, err)
			}
			return g.render(cmd, result, nil)
		},
	}
}

func newConfigCmd() *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:   "config [path]",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if template {
				_, err := fmt.Fprint(out, config.Template())
				return err
			}

			cfg, err := config.Load(config.LoadOptions{TargetDir: targetArg(args)})
			if err != nil {
				return err
			}
			rendered, err := config.Generate(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "# sources: %s\n%s", strings.Join(cfg.Sources, ", "), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, MsgFlagTemplate)

	return cmd
}

func newTopicsCmd(manager *topics.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "topics [name]",
		Short: MsgTopicsShort,
		Long:  MsgTopicsLong,
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return manager.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				manager.WriteIndex(out, cmd.Root().Name())
				return nil
			}
			topic, ok := manager.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown topic %q, see '%s topics'", args[0], cmd.Root().Name())
			}
			_, err := fmt.Fprint(out, manager.Render(topic))
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mirage version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(mirage completion bash)

Zsh:
  $ mirage completion zsh > "${fpath[1]}/_mirage"

Fish:
  $ mirage completion fish | source

PowerShell:
  PS> mirage completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
