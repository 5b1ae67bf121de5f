package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nokel/shopify-migration-tool/cmd/shopmigrate/config"
	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/engine"
	"github.com/nokel/shopify-migration-tool/internal/images"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

var version = "dev"

func main() {
	v := viper.GetViper()
	v.SetDefault("config", "config/migration.yaml")
	v.SetDefault("dry_run", false)
	v.SetDefault("update_existing_orders", false)
	v.SetDefault("log_level", "")
	v.SetDefault("limit", 10)
	v.SetEnvPrefix("SHOPMIGRATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd := &cobra.Command{
		Use:           "shopmigrate",
		Short:         "Migrate a Shopify store to WooCommerce and WordPress",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "Path to migration config file")
	rootCmd.PersistentFlags().String("log-level", v.GetString("log_level"), "Override log level (error, warn, info, debug)")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd.Context(), v)
		},
	}
	runCmd.Flags().Bool("dry-run", v.GetBool("dry_run"), "Validate and report without writing to the target")
	runCmd.Flags().Bool("update-existing-orders", v.GetBool("update_existing_orders"), "Update orders that already exist on the target")
	_ = v.BindPFlag("dry_run", runCmd.Flags().Lookup("dry-run"))
	_ = v.BindPFlag("update_existing_orders", runCmd.Flags().Lookup("update-existing-orders"))

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent migration runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showStatus(cmd.Context(), v)
		},
	}
	statusCmd.Flags().Int("limit", v.GetInt("limit"), "Maximum number of runs to show")
	_ = v.BindPFlag("limit", statusCmd.Flags().Lookup("limit"))

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config and test API connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return validateSetup(cmd.Context(), v)
		},
	}

	rootCmd.AddCommand(runCmd, statusCmd, validateCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(v *viper.Viper) (*config.ConfigDoc, error) {
	doc, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if lvl := v.GetString("log_level"); lvl != "" {
		doc.Logging.Level = lvl
	}
	configureLogging(&doc.Logging)
	return doc, nil
}

func configureLogging(lc *config.LoggingConfig) {
	level := common.ParseLogLevel(lc.Level)
	var logger *common.Logger
	if lc.Format == "json" {
		logger = common.NewJSONLogger(level)
	} else {
		logger = common.NewLogger(level)
	}
	common.SetDefaultLogger(logger)

	if lc.MaskSensitive != nil {
		common.GetMasker().SetEnabled(*lc.MaskSensitive)
	}
}

// buildEngine wires clients, image pipeline and run-history store from the
// config document. The returned cleanup closes the store.
func buildEngine(doc *config.ConfigDoc, v *viper.Viper) (*engine.Engine, func(), error) {
	tlsConfig := doc.Client.TLS()

	source := shopify.New(shopify.Config{
		StoreURL:    doc.Shopify.StoreURL,
		AccessToken: doc.Shopify.AccessToken,
		TlsConfig:   tlsConfig,
	})
	target := woocommerce.New(woocommerce.Config{
		BaseURL:        doc.WooCommerce.URL,
		ConsumerKey:    doc.WooCommerce.ConsumerKey,
		ConsumerSecret: doc.WooCommerce.ConsumerSecret,
		TlsConfig:      tlsConfig,
	})

	var cms engine.CMSClient
	var mgr *images.Manager
	if doc.WordPress.Configured() {
		wpURL := doc.WordPress.URL
		if wpURL == "" {
			wpURL = doc.WooCommerce.URL
		}
		wp := wordpress.New(wordpress.Config{
			BaseURL:   wpURL,
			Username:  doc.WordPress.Username,
			Password:  doc.WordPress.AppPassword,
			TlsConfig: tlsConfig,
		})
		cms = wp

		m, err := images.NewManager(doc.Migrate.ImagesDir, wp, tlsConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("set up image pipeline: %w", err)
		}
		mgr = m
	}

	history, err := doc.Store.Open()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if history != nil {
			_ = history.Close()
		}
	}

	opts := engine.Options{
		Source:               source,
		Target:               target,
		CMS:                  cms,
		ReportDir:            doc.Migrate.ReportDir,
		ImageMaxAge:          time.Duration(doc.Migrate.ImageMaxAgeDays) * 24 * time.Hour,
		UpdateExistingOrders: doc.Migrate.UpdateExistingOrders || v.GetBool("update_existing_orders"),
		History:              history,
		Progress: func(percent int, message string) {
			fmt.Printf("[%3d%%] %s\n", percent, message)
		},
	}
	if mgr != nil {
		opts.Media = mgr
	}

	eng := engine.New(opts)
	if mgr != nil {
		mgr.Cancelled = eng.Stopping
	}
	return eng, cleanup, nil
}

func runMigration(ctx context.Context, v *viper.Viper) error {
	doc, err := loadConfig(v)
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(doc, v)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.ConnectAPIs(ctx); err != nil {
		return err
	}

	// a second interrupt kills the process; the first requests a clean stop
	go func() {
		<-ctx.Done()
		eng.Stop()
	}()

	dryRun := v.GetBool("dry_run")
	result, err := eng.Run(ctx, dryRun)
	if err != nil {
		return err
	}

	switch {
	case result.Stopped:
		return fmt.Errorf("migration stopped before completion")
	case result.HasErrors || result.HasFailures:
		return fmt.Errorf("migration completed with errors, see the report for details")
	}
	return nil
}

func showStatus(ctx context.Context, v *viper.Viper) error {
	doc, err := config.Load(v.GetString("config"))
	if err != nil {
		return err
	}
	configureLogging(&doc.Logging)

	history, err := doc.Store.Open()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("run history store is disabled in the config")
	}
	defer func() { _ = history.Close() }()

	runs, err := history.ListRuns(ctx, v.GetInt("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No migration runs recorded")
		return nil
	}

	fmt.Printf("%-6s %-10s %-20s %-10s %s\n", "ID", "MODE", "STARTED", "DURATION", "RESULT")
	for _, rec := range runs {
		result := "completed"
		if rec.Stopped {
			result = "stopped"
		}
		fmt.Printf("%-6d %-10s %-20s %-10s %s\n",
			rec.ID, rec.Mode,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.EndedAt.Sub(rec.StartedAt).Round(time.Second), result)
	}
	return nil
}

func validateSetup(ctx context.Context, v *viper.Viper) error {
	doc, err := loadConfig(v)
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(doc, v)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.ConnectAPIs(ctx); err != nil {
		return err
	}
	fmt.Println("Configuration is valid and all configured APIs are reachable")
	return nil
}
