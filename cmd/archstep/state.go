package archstep

import (
	"fmt"
	"io"

	"github.com/archstep/archstep/pkg/commands"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/ui/display"
	"github.com/spf13/cobra"
)

func newStagesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "stages",
		Short:   MsgStagesShort,
		GroupID: "install",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), format, commands.ListStages())
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var format, filter string
	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "install",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Status(commands.StatusOptions{State: a.state, Filter: filter})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	cmd.Flags().StringVar(&filter, "filter", "", MsgFlagFilter)
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var format, match string
	cmd := &cobra.Command{
		Use:     "get [KEY]",
		Short:   MsgGetShort,
		GroupID: "state",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.GetValuesOptions{State: a.state, Match: match}
			if len(args) == 1 {
				opts.Key = args[0]
			}
			result, err := commands.GetValues(opts)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	cmd.Flags().StringVar(&match, "match", "", MsgFlagMatch)
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   MsgSetShort,
		GroupID: "state",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := commands.SetValue(commands.SetValueOptions{State: a.state, Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "auto", msg)
		},
	}
}

func newMarkCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:               "mark <stage>",
		Short:             MsgMarkShort,
		Long:              MsgMarkLong,
		GroupID:           "state",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: stageCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := commands.MarkStage(cmd.Context(), commands.MarkStageOptions{
				State:   a.state,
				Stage:   args[0],
				Confirm: a.console(cmd),
				Yes:     yes,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "auto", msg)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	return cmd
}

func newHandoffCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:     "handoff",
		Short:   MsgHandoffShort,
		Long:    MsgHandoffLong,
		GroupID: "state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := commands.Handoff(commands.HandoffOptions{State: a.state, Target: target})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "auto", msg)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", MsgFlagTarget)
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		GroupID: "state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := commands.Reset(cmd.Context(), commands.ResetOptions{
				State:   a.state,
				Confirm: a.console(cmd),
				Yes:     yes,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "auto", msg)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	return cmd
}

func newGenConfigCmd(a *app) *cobra.Command {
	var (
		write bool
		path  string
	)
	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		// A broken config file must not stop this command from replacing it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := commands.GenConfig(commands.GenConfigOptions{FS: filesystem.NewOS(), Write: write, Path: path})
			if err != nil {
				return err
			}
			if res.Written == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), res.Content)
				return err
			}
			return render(cmd.OutOrStdout(), "auto", &display.Message{Text: fmt.Sprintf(MsgConfigWritten, res.Written)})
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	return cmd
}
