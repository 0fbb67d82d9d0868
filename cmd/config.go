package cmd

import (
	"fmt"

	"github.com/khrees2412/pathweiz/internal/app"
	"github.com/khrees2412/pathweiz/internal/config"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.AppConfig
		out := cmd.OutOrStdout()
		row := func(label, value string) {
			fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render(label), value)
		}

		fmt.Fprintln(out, render.TitleStyle.Render("Configuration"))
		row("Config File:", config.GetConfigPath())
		row("Backend URL:", cfg.BackendURL)
		row("Supabase URL:", orNotSet(cfg.SupabaseURL))
		// never print the key itself
		if cfg.SupabaseKey != "" {
			row("Supabase Key:", "✓ Configured")
		} else {
			row("Supabase Key:", "✗ Not configured")
		}
		row("Explore Page Size:", fmt.Sprint(cfg.ExplorePageSize))
		row("Request Timeout:", cfg.RequestTimeout.String())
		row("Log Level:", cfg.LogLevel)
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  pathweiz config set --key backend_url --value https://api.pathweiz.example
  pathweiz config set --key supabase_url --value https://xyz.supabase.co
  pathweiz config set --key supabase_key --value eyJ...
  pathweiz config set --key explore_page_size --value 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			return fmt.Errorf("%w: both --key and --value are required", app.ErrInvalidArgument)
		}
		if !config.IsValidKey(key) {
			return fmt.Errorf("%w: key must be one of %v", app.ErrInvalidArgument, config.ValidKeys)
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("error updating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration updated: %s\n", key)

		// Reload config
		if err := config.Initialize(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not reload config: %v\n", err)
		}
		return nil
	},
}

func orNotSet(s string) string {
	if s == "" {
		return render.MutedStyle.Render("(not set)")
	}
	return s
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
