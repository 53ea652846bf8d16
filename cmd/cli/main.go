package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/cmd/cli/commands"
	"github.com/rushtracker/rushtracker/internal/config"
	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/clients/imageclient"
	"github.com/rushtracker/rushtracker/pkg/session"
	"github.com/rushtracker/rushtracker/pkg/utils/logging"
)

var env string

func main() {
	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "rushtracker",
		Short: "RushTracker CLI - Run fraternity recruitment",
		Long:  `A CLI client for the RushTracker API: rushees, notes, events and forms, the brotherhood and rushee check-in.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: dev, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.LoginCmd(app))
	rootCmd.AddCommand(commands.LogoutCmd(app))
	rootCmd.AddCommand(commands.DashboardCmd(app))
	rootCmd.AddCommand(commands.RusheesCmd(app))
	rootCmd.AddCommand(commands.TagsCmd(app))
	rootCmd.AddCommand(commands.NotesCmd(app))
	rootCmd.AddCommand(commands.EventsCmd(app))
	rootCmd.AddCommand(commands.BrothersCmd(app))
	rootCmd.AddCommand(commands.ProfileCmd(app))
	rootCmd.AddCommand(commands.DelibsCmd(app))
	rootCmd.AddCommand(commands.WrappedCmd(app))
	rootCmd.AddCommand(commands.OnboardCmd(app))
	rootCmd.AddCommand(commands.RushFormCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, session and clients
func initApp(app *commands.AppContext) error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, "")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("api", app.Cfg.APIBaseURL))

	app.Session, err = session.Open(app.Cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	if brother, ok := app.Session.Brother(); ok {
		app.Logger.Debug("Session restored", zap.String("brother_id", brother.ID))
	}

	app.API, err = apiclient.NewClient(apiclient.Options{
		BaseURL: app.Cfg.APIBaseURL,
		Timeout: app.Cfg.RequestTimeout,
	}, app.Session, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	app.Images, err = imageclient.NewClient(imageclient.Options{
		Provider: imageclient.Provider(app.Cfg.ImageUpload.Provider),
		Endpoint: app.Cfg.ImageUpload.Endpoint,
		APIKey:   app.Cfg.ImageUpload.APIKey,
		MaxBytes: app.Cfg.ImageUpload.MaxBytes,
		Timeout:  app.Cfg.RequestTimeout,
	}, app.API, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create image client: %w", err)
	}

	app.Prompt = commands.NewPrompter(os.Stdin, os.Stdout)
	app.Logger.Debug("Clients initialized successfully")
	return nil
}
