package cli

// Command descriptions
const (
	MsgRootShort = "Replace duplicate files with symlinks to a single copy"
	MsgRootLong  = `mirage finds files with identical content inside a directory tree and
replaces every duplicate with a symlink to one canonical copy kept in the
tree's .mirage/originals directory.

Every change is planned into a write-ahead journal (.mirage/wal.json) before
it is made, so an interrupted run resumes where it stopped and every change
can be undone with 'mirage revert'.`

	MsgApplyShort = "Deduplicate a directory tree"
	MsgApplyLong  = `Apply scans the tree (default: the current directory), plans a copy into
the side-store and a symlink for every group of files with identical content,
and then executes the pending plan.

Running apply again is safe: already planned work is not planned twice and
an interrupted run is finished first.`
	MsgApplyExample = `  # Deduplicate the current directory
  mirage apply

  # See what would change
  mirage apply --dry-run ~/Photos

  # Leave dotfiles and logs alone
  mirage apply --skip-hidden --ignore '*.log' ~/src`

	MsgRevertShort = "Undo every change apply made to a tree"
	MsgRevertLong  = `Revert replays the journal backwards: every symlink is replaced by a copy of
its content and the side-store is deleted. A tree that was never applied is
left alone.`

	MsgStatusShort = "Show the journal of a tree"
	MsgStatusLong  = `Status reads the journal of a tree without changing anything and lists the
canonical copies with the files redirected to them.`

	MsgConfigShort = "Print the effective configuration"
	MsgConfigLong  = `Config prints the configuration apply would use for a tree, after the
built-in defaults, the user config file, the tree's .mirage.toml and MIRAGE_*
environment variables were merged.`

	MsgTopicsShort = "List all topics or show help for a topic"
	MsgTopicsLong  = "Display a list of all available help topics that provide additional documentation beyond command help."

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)

// Flag descriptions
const (
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat     = "Output format: auto, term, text or json"
	MsgFlagDryRun     = "Preview changes without executing them"
	MsgFlagSkipHidden = "Skip files and directories whose name starts with a dot"
	MsgFlagIgnore     = "Glob of files to leave alone (repeatable)"
	MsgFlagTemplate   = "Print the commented default configuration instead"
)

// Error messages
const (
	MsgErrRenderer = "failed to create renderer: %w"
	MsgErrTopics   = "failed to load help topics: %w"
)
