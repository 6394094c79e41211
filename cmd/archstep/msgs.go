package archstep

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Install Arch Linux in resumable stages"
	MsgRunShort        = "Run one installation stage"
	MsgStatusShort     = "Show completed stages and recorded values"
	MsgStagesShort     = "List the installation chain"
	MsgGetShort        = "Print recorded values"
	MsgSetShort        = "Record a value by hand"
	MsgMarkShort       = "Mark a stage as completed without running it"
	MsgHandoffShort    = "Copy the session into the target root"
	MsgResetShort      = "Forget every decision and marker"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgGenConfigShort  = "Print or write the default configuration"
	MsgGenConfigLong   = "Print the built-in configuration, or with -w write it to /etc/archstep/config.toml (or --path) as a starting point. An existing file is left alone."
	MsgConfigWritten   = "Default configuration written to %s"

	MsgStatusLong  = "Status shows every stage of the chain, whether it completed and which one runs next, followed by the values recorded so far."
	MsgMarkLong    = "Mark records a stage marker without running the stage, for work done by hand. Later stages trust the marker, so this asks for confirmation."
	MsgHandoffLong = "Handoff merges the host session into the state directory below the target root. " +
		"The base stage does this on success; run it by hand after marking stages or setting values on the live media."
	MsgVersionFormat = "archstep %s (commit %s, built %s)\n"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Log external commands instead of running them; nothing is recorded"
	MsgFlagConfig         = "Load configuration from FILE after the system and user files"
	MsgFlagFormat         = "Output format (auto, term, text, json, yaml, toml)"
	MsgFlagFilter         = "Only show values whose key matches GLOB"
	MsgFlagMatch          = "Only print values whose key matches GLOB"
	MsgFlagSet            = "Answer a question or replace a detection (KEY=VALUE, repeatable)"
	MsgFlagNonInteractive = "Never prompt; fail on any value without a safe default"
	MsgFlagForce          = "Run again without asking when the stage already completed"
	MsgFlagTarget         = "Root of the installed system (default: configured target root)"
	MsgFlagYes            = "Do not ask for confirmation"
	MsgFlagWrite          = "Write the configuration instead of printing it"
	MsgFlagPath           = "File to write (default /etc/archstep/config.toml)"

	// Error messages
	MsgErrNoCommand  = "no command specified"
	MsgErrAssignment = "invalid assignment %q"
	MsgErrFormat     = "invalid output format %q"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
