package archstep

import (
	"fmt"
	"io"

	"github.com/archstep/archstep/internal/version"
	"github.com/archstep/archstep/pkg/commands"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/paths"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE resolved for the subcommands
type app struct {
	verbosity  int
	configFile string
	dryRun     bool

	cfg   *config.Config
	state commands.State
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "archstep",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid usage").
			WithRemedy(fmt.Sprintf("run '%s --help'", cmd.CommandPath()))
	})

	rootCmd.AddGroup(&cobra.Group{ID: "install", Title: "INSTALL:"})
	rootCmd.AddGroup(&cobra.Group{ID: "state", Title: "STATE:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetHelpCommandGroupID("misc")

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newStagesCmd())
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newGetCmd(a))
	rootCmd.AddCommand(newSetCmd(a))
	rootCmd.AddCommand(newMarkCmd(a))
	rootCmd.AddCommand(newHandoffCmd(a))
	rootCmd.AddCommand(newResetCmd(a))
	rootCmd.AddCommand(newGenConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// load reads the configuration and resolves the state locations
func (a *app) load() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	p, err := paths.New(cfg.Paths.StateDir, cfg.Paths.TargetRoot)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.state = commands.State{FS: filesystem.NewOS(), Paths: p}
	log.Debug().
		Str("state_dir", p.StateDir()).
		Str("target_root", p.TargetRoot()).
		Bool("dry_run", a.dryRun).
		Msg("Configuration loaded")
	return nil
}

// console prompts on the command's input, writing questions to stderr so
// stdout stays machine-readable
func (a *app) console(cmd *cobra.Command) *prompt.Console {
	return prompt.NewConsole(cmd.InOrStdin(), cmd.ErrOrStderr(), a.cfg.Prompt.Timeout)
}

// render writes result to the command's output in the requested format
func render(w io.Writer, format string, result interface{}) error {
	f, err := ui.ParseFormat(format)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, MsgErrFormat, format).
			WithRemedy(fmt.Sprintf("use one of %v", ui.FormatNames))
	}
	renderer, err := ui.NewRenderer(f, w)
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}

// stageCompletion completes stage aliases
func stageCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, s := range commands.ListStages().Stages {
		names = append(names, s.Alias)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		// Needs neither configuration nor logging
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		PersistentPreRunE:     func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
