package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/camgrab/internal/version"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var repository string
	var prerelease bool
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update to the latest release",
		Long:  `Checks GitHub for a newer release and replaces the running binary with it.`,
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := runUpdate(ctx, repository, prerelease, checkOnly); err != nil {
				fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "smazurov/camgrab", "GitHub repository to update from")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Allow prerelease versions")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, do not apply")
	return cmd
}

func runUpdate(ctx context.Context, repository string, prerelease, checkOnly bool) error {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return fmt.Errorf("failed to create GitHub source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	repo := selfupdate.ParseSlug(repository)
	release, found, err := updater.DetectLatest(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("repository %s not found or has no releases", repository)
	}

	current := version.Version

	// A dev build is always considered outdated
	if current != "dev" && !release.GreaterThan(current) {
		fmt.Printf("Already up to date (current %s, latest %s)\n", current, release.Version())
		return nil
	}

	fmt.Printf("Update available: %s -> %s\n", current, release.Version())
	if checkOnly {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	fmt.Printf("Downloading %s...\n", release.Version())
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}

	fmt.Printf("Updated to %s\n", release.Version())
	return nil
}
