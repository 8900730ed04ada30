// Command crashsym generates native debug symbols for Android libraries
// and uploads them to Firebase Crashlytics.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/deixis/crashsym"
	"github.com/deixis/crashsym/internal/config"
	"github.com/deixis/crashsym/internal/workflow"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("crashsym: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crashsym",
		Short:         "Upload native debug symbols to Firebase Crashlytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	symbols := &cobra.Command{
		Use:   "symbols",
		Short: "Manage native debug symbols",
	}
	symbols.AddCommand(newUploadCmd())

	root.AddCommand(
		symbols,
		newMCPCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), crashsym.Version)
			},
		},
	)
	return root
}

// newEnv loads the configuration of the working directory. A positive
// timeoutOverride replaces the configured per-process timeout.
func newEnv(timeoutOverride time.Duration) (*workflow.Environment, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	env, err := workflow.NewEnvironment(workspace, loaded, os.Getenv)
	if err != nil {
		return nil, err
	}
	if timeoutOverride > 0 {
		env.Runner.Timeout = timeoutOverride
	}
	return env, nil
}
