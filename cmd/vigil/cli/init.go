package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vigilhq/cli/cmd/vigil/cli/paths"
	"github.com/vigilhq/cli/cmd/vigil/cli/settings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize vigil in the current repository",
		Long: "Creates the hidden .vigil state directory at the repository root and\n" +
			"adds it to .gitignore. Must be run at the root of a git repository.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompts")

	return cmd
}

func runInit(cmd *cobra.Command, yes bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// init must run at the project root: the hidden state directory and the
	// ignore entry both live there.
	if info, statErr := os.Stat(filepath.Join(cwd, ".git")); statErr != nil || !info.IsDir() {
		return ErrNotAProjectRoot
	}

	if err := os.MkdirAll(filepath.Join(cwd, paths.VigilDir), 0o755); err != nil { //nolint:gosec // hidden state dir, standard perms
		return fmt.Errorf("creating %s: %w", paths.VigilDir, err)
	}

	// Seed default settings on first init only; re-running must not clobber
	// a tuned configuration.
	settingsPath := filepath.Join(cwd, paths.SettingsFile)
	if _, statErr := os.Stat(settingsPath); errors.Is(statErr, fs.ErrNotExist) {
		if err := settings.Save(settings.Default()); err != nil {
			return err
		}
	}

	if err := ensureIgnoreEntry(cmd, cwd, yes); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Successfully initialized vigil")
	return nil
}

// ensureIgnoreEntry appends the hidden-state entry to .gitignore when it is
// not already present, confirming first when running interactively.
func ensureIgnoreEntry(cmd *cobra.Command, root string, yes bool) error {
	gitignorePath := filepath.Join(root, ".gitignore")

	data, err := os.ReadFile(gitignorePath) //nolint:gosec // path is root/.gitignore
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}
	existing := string(data)

	for line := range strings.SplitSeq(existing, "\n") {
		if strings.TrimSpace(line) == paths.IgnoreEntry {
			return nil // Already ignored
		}
	}

	if !yes && isInteractive() {
		confirmed, err := confirmIgnorePatch()
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted")
			return NewSilentError(err)
		}
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Skipped .gitignore update; add `.vigil` yourself to keep checkpoint state out of commits")
			return nil
		}
	}

	updated := existing
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += paths.IgnoreEntry + "\n"

	if err := os.WriteFile(gitignorePath, []byte(updated), 0o644); err != nil { //nolint:gosec // .gitignore is project-visible
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	return nil
}

// isInteractive reports whether prompting makes sense.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// confirmIgnorePatch asks whether to append the ignore entry.
// Accessibility mode uses simple text prompts for screen readers.
func confirmIgnorePatch() (bool, error) {
	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Add .vigil to .gitignore?").
				Description("Keeps vigil's hidden state out of your commits.").
				Value(&confirmed),
		),
	).WithAccessible(os.Getenv("ACCESSIBLE") != "")

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return confirmed, nil
}
