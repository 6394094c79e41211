package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/archstep/archstep/cmd/archstep"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := archstep.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	renderer, rerr := ui.NewRenderer(ui.FormatAuto, os.Stderr)
	if rerr == nil {
		if inst, ok := errors.AsInstallError(err); ok && inst.Code == errors.ErrUserCancelled {
			_ = renderer.RenderMessage(inst.Message)
		} else {
			_ = renderer.RenderError(err)
		}
	}
	os.Exit(errors.ExitCode(err))
}
