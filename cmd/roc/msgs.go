package roc

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort          = "Build projects from composable extensions"
	MsgSettingsShort      = "Show the merged settings"
	MsgExtensionsShort    = "List the extensions used by the project"
	MsgDepsShort          = "Inspect the dependencies extensions declare"
	MsgDepsVerifyShort    = "Check the project satisfies what extensions require"
	MsgDepsExportsShort   = "Show the dependencies extensions export, use and require"
	MsgHooksShort         = "Inspect and fire extension hooks"
	MsgHooksListShort     = "List the hooks extensions define"
	MsgHooksRunShort      = "Fire a hook and print the value its actions return"
	MsgConfigShort        = "Manage the project configuration"
	MsgConfigInitShort    = "Write a roc.config.toml with the defaults"
	MsgVersionShort       = "Print version information"
	MsgCompletionShort    = "Generate shell completion script"
	MsgGroupCore          = "COMMANDS:"
	MsgGroupExtensions    = "EXTENSION COMMANDS:"
	MsgGroupMisc          = "MISC:"
	MsgVersionFormat      = "%s\n"
	MsgNoExtensions       = "No extensions in use."
	MsgNoHooks            = "No hooks defined."
	MsgNoRequirements     = "No requirements declared."
	MsgDepsOK             = "All %d requirement(s) are met."
	MsgConfigWritten      = "Wrote %s\n"
	MsgSettingsEmpty      = "No settings."
	MsgProjectExtensions  = "Project extensions:"
	MsgUsedExtensions     = "Extensions:"
	MsgHookOwner          = "%s:"
	MsgHookItem           = "  %s"
	MsgHookDescription    = " - %s"
	MsgRequirementHeader  = "Unmet requirements:"
	MsgRequirementItem    = "  %s %s %s\n"
	MsgUnknownSettingPath = "no setting at %s"

	// Error messages
	MsgErrLoadProject  = "failed to load the project: %w"
	MsgErrConfigExists = "%s already exists, use --force to replace it"
	MsgErrWriteConfig  = "failed to write %s: %w"
	MsgErrEncode       = "failed to encode output: %w"
	MsgErrNoCommand    = "no command specified"
	MsgHintSkipVerify  = "run 'roc deps verify' for details or set verify.dependencies = false in roc.config.toml"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDir     = "Project directory (defaults to ROC_PROJECT_DIR or the working directory)"
	MsgFlagSet     = "Set a setting, e.g. --set settings.build.port=3000 (repeatable)"
	MsgFlagPackage = "Use this package instead of the configured ones (repeatable)"
	MsgFlagPlugin  = "Use this plugin instead of the configured ones (repeatable)"
	MsgFlagMeta    = "Show descriptions, validators and owners instead of values"
	MsgFlagForce   = "Replace an existing file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/settings-long.txt
	msgSettingsLongRaw string
	MsgSettingsLong    = strings.TrimSpace(msgSettingsLongRaw)

	//go:embed msgs/settings-example.txt
	msgSettingsExampleRaw string
	MsgSettingsExample    = strings.TrimSpace(msgSettingsExampleRaw)

	//go:embed msgs/deps-verify-long.txt
	msgDepsVerifyLongRaw string
	MsgDepsVerifyLong    = strings.TrimSpace(msgDepsVerifyLongRaw)

	//go:embed msgs/hooks-run-long.txt
	msgHooksRunLongRaw string
	MsgHooksRunLong    = strings.TrimSpace(msgHooksRunLongRaw)

	//go:embed msgs/hooks-run-example.txt
	msgHooksRunExampleRaw string
	MsgHooksRunExample    = strings.TrimSpace(msgHooksRunExampleRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
