package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install completions for one shell.
type shellCompletion struct {
	generate func(io.Writer) error
	hint     string
	// target returns the install path under home; nil means no install support.
	target func(home string) string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		hint:     `eval "$(staffplan completion bash)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "staffplan")
		},
	},
	"zsh": {
		generate: rootCmd.GenZshCompletion,
		hint:     `eval "$(staffplan completion zsh)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_staffplan")
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		hint:     "staffplan completion fish | source",
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "staffplan.fish")
		},
	},
	"powershell": {
		generate: rootCmd.GenPowerShellCompletionWithDesc,
		hint:     "staffplan completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for staffplan",
	Long: `Set up shell tab-completions for staffplan commands and flags.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script to your user completion directory):

  staffplan completion bash --install
  staffplan completion zsh --install
  staffplan completion fish --install

Or print the completion script to stdout:

  staffplan completion bash`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your user completion directory")

	// Replace Cobra's default completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	sc, ok := shellCompletions[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: %s)", args[0], supportedShells())
	}

	if completionInstall {
		return installCompletion(cmd, args[0], sc)
	}

	// Hints go to stderr so the script can be piped from stdout.
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "# To load completions in your current session:\n#   %s\n", sc.hint)
	return sc.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, shell string, sc shellCompletion) error {
	if sc.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'staffplan completion %s' and add the output to your profile", shell, shell)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}

	target := sc.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := sc.generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s completions installed to %s\n", shell, target)
	return nil
}

func supportedShells() string {
	names := make([]string, 0, len(shellCompletions))
	for name := range shellCompletions {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v", names)
}
