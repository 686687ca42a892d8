package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kvalheim/dvrctl/config"
	"github.com/kvalheim/dvrctl/filter"
	"github.com/kvalheim/dvrctl/recorder"
)

var (
	cfgFile        string
	cfg            *config.Config
	logger         zerolog.Logger
	recorderClient *recorder.Client

	// Command flags
	filterExpr  string
	preset      string
	dryRun      bool
	noConfirm   bool
	deleteFiles bool
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build metadata for the version output.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dvrctl",
	Short: "A tool to inspect and manage recordings on a recorder service",
	Long: `dvrctl is a CLI tool that talks to a remote recorder/device control
service. It can list and delete recordings based on filter expressions and
inspect tuner and disk status.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "perform a dry run without making changes")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}

	// Create recorder client
	recorderClient, err = recorder.NewClient(cfg.Recorder.URL, cfg.Recorder.APIKey, logger)
	if err != nil {
		return fmt.Errorf("failed to create recorder client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; colors only when writing to a real terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recordings matching the filter criteria",
	Long:  `List all recordings on the recorder service that match the specified filter criteria.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	recordings, err := searchRecordings(ctx)
	if err != nil {
		return err
	}

	if len(recordings) == 0 {
		fmt.Println("No recordings found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d recordings:\n", len(recordings))
	fmt.Println(strings.Repeat("-", 80))

	for _, rec := range recordings {
		fmt.Printf("• %s", rec.Title)
		if rec.SubTitle != "" {
			fmt.Printf(" — %s", rec.SubTitle)
		}
		if rec.Watched() {
			fmt.Printf(" [WATCHED]")
		}
		fmt.Println()
		if cfg.Safety.ShowDetails {
			fmt.Printf("  Channel: %s\n", rec.ChannelDisplayName)
			fmt.Printf("  Recorded: %s\n", rec.ProgramStartTime.Format("2006-01-02 15:04"))
			if rec.FileSize > 0 {
				fmt.Printf("  Size: %.1f GB\n", float64(rec.FileSize)/(1024*1024*1024))
			}
			if rec.Watched() {
				fmt.Printf("  Last watched: %s\n", rec.LastWatchedTime.Format("2006-01-02"))
			}
		}
	}

	return nil
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete recordings matching the filter criteria",
	Long:  `Delete recordings from the recorder service that match the specified filter criteria.`,
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	deleteCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	deleteCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")
	deleteCmd.Flags().BoolVar(&deleteFiles, "delete-files", true, "also delete recording files from disk")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	recordings, err := searchRecordings(ctx)
	if err != nil {
		return err
	}

	if len(recordings) == 0 {
		fmt.Println("No recordings found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\n%d recordings selected for deletion.\n", len(recordings))

	if cfg.Safety.ConfirmDelete && !noConfirm {
		fmt.Printf("Are you sure you want to delete them? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
	}

	var deleted, failed int
	for _, rec := range recordings {
		if cfg.Safety.DryRun {
			fmt.Printf("[DRY RUN] Would delete: %s (%s)\n", rec.Title, rec.RecordingID)
			continue
		}

		if err := recorderClient.DeleteRecording(ctx, rec.RecordingID, deleteFiles); err != nil {
			if recorder.IsNotFound(err) {
				logger.Warn().Str("recording_id", rec.RecordingID).Msg("Recording already gone")
				continue
			}
			logger.Error().Err(err).Str("title", rec.Title).Msg("Failed to delete recording")
			failed++
			continue
		}
		deleted++
	}

	if !cfg.Safety.DryRun {
		fmt.Printf("\n✓ Deleted %d recordings", deleted)
		if failed > 0 {
			fmt.Printf(", %d failed", failed)
		}
		fmt.Println()
	}

	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the recorder service",
	Long:  `Test the connection to the recorder service and display basic information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to recorder service at %s...\n", cfg.Recorder.URL)

	// Connection is already tested during client creation
	fmt.Println("✓ Connection successful!")

	ctx := context.Background()

	apiVersion, err := recorderClient.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping service: %w", err)
	}

	recordings, err := recorderClient.GetRecordings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get recordings: %w", err)
	}

	tuners, err := recorderClient.GetTuners(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tuners: %w", err)
	}

	disk, err := recorderClient.GetDiskStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get disk status: %w", err)
	}

	fmt.Printf("\nRecorder Statistics:\n")
	fmt.Printf("- API version: %d\n", apiVersion)
	fmt.Printf("- Total recordings: %d\n", len(recordings))
	fmt.Printf("- Tuners: %d\n", len(tuners))
	fmt.Printf("- Disk free: %.1f%%\n", disk.FreePercent())

	if len(tuners) > 0 {
		fmt.Printf("\nAvailable tuners:\n")
		for _, tuner := range tuners {
			status := "idle"
			if tuner.InUse {
				status = "recording"
			}
			if !tuner.Enabled {
				status = "disabled"
			}
			fmt.Printf("  • %s (%s)\n", tuner.Name, status)
		}
	}

	return nil
}

// searchRecordings fetches, enriches and filters recordings for the
// list/delete commands.
func searchRecordings(ctx context.Context) ([]recorder.Recording, error) {
	expr, err := getFilterExpression()
	if err != nil {
		return nil, err
	}

	logger.Info().Str("filter", expr).Msg("Searching recordings")

	recFilter, err := filter.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	recordings, err := recorderClient.GetRecordings(ctx)
	if err != nil {
		return nil, err
	}

	if err := recorderClient.EnrichRecordings(ctx, recordings); err != nil {
		return nil, err
	}

	return recFilter.Apply(recordings)
}

// getFilterExpression determines the filter expression to use
func getFilterExpression() (string, error) {
	// Priority: command line filter > preset > default
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		if presetExpr, ok := cfg.Filter.Presets[preset]; ok {
			return presetExpr, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", preset)
	}

	if cfg.Filter.DefaultExpression != "" {
		return cfg.Filter.DefaultExpression, nil
	}

	return "", fmt.Errorf("no filter expression specified")
}
