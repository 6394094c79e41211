package config

import (
	"os"
	"strings"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ARCHSTEP_"

// Load builds the configuration from every layer. Optional files that do not
// exist are skipped; explicit, when set, must exist.
func Load(explicit string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. System and user files
	for _, path := range paths.ConfigFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithRemedy("fix the TOML syntax in " + path + " or remove the file")
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Explicit --config file
	if explicit != "" {
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", explicit).
				WithRemedy("check the path given to --config")
		}
		logger.Debug().Str("path", explicit).Msg("Loaded explicit config file")
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	return decode(k)
}

// Builtin returns the embedded defaults alone
func Builtin() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}
	return decode(k)
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "invalid configuration")
	}

	return &cfg, nil
}

// envKey maps ARCHSTEP_SECTION__KEY to section.key. The two path variables
// shared with pkg/paths map onto the paths section; anything else without a
// section separator is not configuration and is ignored.
func envKey(s string) string {
	switch s {
	case paths.EnvStateDir:
		return "paths.state_dir"
	case paths.EnvTargetRoot:
		return "paths.target_root"
	}
	name := strings.TrimPrefix(s, EnvPrefix)
	if !strings.Contains(name, "__") {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}
