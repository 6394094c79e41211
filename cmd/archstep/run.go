package archstep

import (
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/commands"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/system"
	"github.com/spf13/cobra"
)

// shorthands maps convenience flags onto the keys they set
var shorthands = []struct {
	flag, key, usage string
}{
	{"disk", stages.KeyTargetDisk, "Target disk (TARGET_DISK)"},
	{"kernels", stages.KeyKernels, "Space separated kernels (SELECTED_KERNELS)"},
	{"hostname", stages.KeyHostname, "Hostname of the installed system (HOSTNAME)"},
	{"timezone", stages.KeyTimezone, "Timezone such as Europe/Berlin (TIMEZONE)"},
	{"locale", stages.KeyLocale, "Locale such as en_US.UTF-8 (LOCALE)"},
	{"keymap", stages.KeyKeymap, "Console keymap (KEYMAP)"},
	{"username", stages.KeyUsername, "Name of the user account (USERNAME)"},
	{"bootloader", stages.KeyBootloader, "Bootloader to install (BOOTLOADER)"},
	{"desktop", stages.KeyDesktop, "Desktop environment (DESKTOP)"},
	{"aur-helper", stages.KeyAURHelper, "AUR helper to build (AUR_HELPER)"},
}

// parseAssignments turns KEY=VALUE pairs into a map. Later pairs win. Keys
// are upper case, like every key the stages record.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := map[string]string{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || !kvstore.ValidKey(key) || strings.ToUpper(key) != key {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgErrAssignment, pair).
				WithReason("keys are upper case letters, digits and underscores").
				WithRemedy("pass --set KEY=VALUE, for example --set HOSTNAME=archbox")
		}
		values[key] = value
	}
	return values, nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		sets           []string
		nonInteractive bool
		force          bool
	)
	short := make(map[string]*string, len(shorthands))

	cmd := &cobra.Command{
		Use:               "run <stage>",
		Short:             MsgRunShort,
		Long:              MsgRunLong,
		Example:           MsgRunExample,
		GroupID:           "install",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: stageCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			for _, s := range shorthands {
				if cmd.Flags().Changed(s.flag) {
					overrides[s.key] = *short[s.flag]
				}
			}

			var next prompt.Prompter
			if !nonInteractive {
				next = a.console(cmd)
			}
			executor := command.NewExecutor(a.dryRun)

			summary, err := commands.RunStage(cmd.Context(), commands.RunStageOptions{
				State:     a.state,
				Stage:     args[0],
				Probe:     system.NewHost(a.cfg.Network.CheckHost, a.cfg.Network.Timeout),
				Prompt:    prompt.NewPreset(overrides, next, nonInteractive),
				Commander: executor,
				Config:    a.cfg,
				Detect:    detect.New(executor),
				Overrides: overrides,
				Force:     force,
				DryRun:    a.dryRun,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "auto", summary)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)
	for _, s := range shorthands {
		short[s.flag] = cmd.Flags().String(s.flag, "", s.usage)
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, MsgFlagNonInteractive)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)

	return cmd
}
