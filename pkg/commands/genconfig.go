package commands

import (
	"path/filepath"

	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/paths"
	"github.com/archstep/archstep/pkg/types"
)

// GenConfigOptions defines the options for GenConfig
type GenConfigOptions struct {
	FS types.FS
	// Write stores the defaults instead of only returning them
	Write bool
	// Path is where Write stores them; empty means the system config file
	Path string
}

// GenConfigResult holds the default configuration and where it went
type GenConfigResult struct {
	Content string
	Written string
}

// GenConfig returns the built-in configuration, optionally writing it as a
// starting point for local edits. An existing file is never overwritten.
func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	logger := logging.GetLogger("commands.genconfig")
	result := &GenConfigResult{Content: config.DefaultContent()}
	if !opts.Write {
		return result, nil
	}

	path := opts.Path
	if path == "" {
		path = filepath.Join(paths.SystemConfigDir, paths.ConfigFileName)
	}
	exists, err := filesystem.Exists(opts.FS, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s already exists", path).
			WithRemedy("edit the file, or remove it and run gen-config again")
	}
	if err := opts.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", filepath.Dir(path))
	}
	if err := filesystem.WriteAtomic(opts.FS, path, []byte(result.Content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", path)
	}

	logger.Info().Str("path", path).Msg("Default configuration written")
	result.Written = path
	return result, nil
}
