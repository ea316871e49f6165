package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/tutor-hub/internal/config"
	"github.com/Tiliavir/tutor-hub/internal/logger"
	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

var (
	configPath string

	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "thub",
	Short: "Tutor Hub – edit your tutor profile and availability from the command line",
	Long: `thub pulls a tutor profile or job post from the marketplace into a local
draft, lets you edit availability, education and qualifications offline, and
pushes exactly the changes you made. Drafts are JSON files in ~/.thub/drafts/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		if errors.Is(err, syncer.ErrPartialFailure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// shownError wraps an error the user has already been notified about.
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logger.New(c.Log)
	if err != nil {
		return err
	}
	cfg, log = c, l
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.thub/config.yaml)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(newEntriesCmd(model.EducationSchema, "education", "edu"))
	rootCmd.AddCommand(newEntriesCmd(model.QualificationSchema, "qualification", "qual"))
	rootCmd.AddCommand(exportCmd)
}
