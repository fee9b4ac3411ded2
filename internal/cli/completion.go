package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for todo",
	Long: `Set up shell tab-completions for todo commands, flags, task ids and
status names.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script under your home directory):

  todo completion bash --install
  todo completion zsh --install
  todo completion fish --install

Or print the completion script to stdout:

  eval "$(todo completion bash)"
  todo completion fish | source`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

// completionShell describes how to generate and where to install the
// script for one shell. An empty installPath means --install is unsupported.
type completionShell struct {
	generate    func(w io.Writer) error
	installPath []string
	loadHint    string
}

var completionShells = map[string]completionShell{
	"bash": {
		generate:    func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		installPath: []string{".local", "share", "bash-completion", "completions", "todo"},
		loadHint:    `eval "$(todo completion bash)"`,
	},
	"zsh": {
		generate:    func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		installPath: []string{".local", "share", "zsh", "site-functions", "_todo"},
		loadHint:    `eval "$(todo completion zsh)"`,
	},
	"fish": {
		generate:    func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		installPath: []string{".config", "fish", "completions", "todo.fish"},
		loadHint:    "todo completion fish | source",
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		loadHint: "todo completion powershell | Out-String | Invoke-Expression",
	},
}

// userHomeDir is replaced in tests.
var userHomeDir = os.UserHomeDir

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions under your home directory")

	// Remove Cobra's default completion command and add ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := completionShells[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		return installCompletion(cmd, args[0], shell)
	}

	// Hints go to stderr so piping the script stays clean.
	fmt.Fprintf(cmd.ErrOrStderr(), "# To load completions in your current session:\n#   %s\n", shell.loadHint)
	return shell.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, name string, shell completionShell) error {
	if len(shell.installPath) == 0 {
		return fmt.Errorf("automatic install is not supported for %s; run 'todo completion %s' and add the output to your profile", name, name)
	}
	home, err := userHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}

	target := filepath.Join(append([]string{home}, shell.installPath...)...)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, shell.generate); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	if name == "zsh" {
		fmt.Fprintf(out, "Ensure this directory is in your fpath:\n  fpath=(%s $fpath)\n", filepath.Dir(target))
	}
	return nil
}

// writeCompletionFile creates target and writes the script into it,
// propagating close errors.
func writeCompletionFile(target string, generate func(w io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
