package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage AI provider preferences",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show registered providers and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		statuses := app.orch.Status()
		if len(statuses) == 0 {
			fmt.Println("No providers configured. Set an API key (e.g. ai.gemini.api_key) to register one.")
			return nil
		}

		fmt.Printf("%-12s %-9s %-9s %-10s %s\n", "PROVIDER", "PRIORITY", "ENABLED", "PREFERRED", "QUARANTINED")
		for _, s := range statuses {
			fmt.Printf("%-12s %-9d %-9t %-10t %t\n", s.Name, s.Priority, s.Enabled, s.Preferred, s.Quarantined)
		}
		return nil
	},
}

var providersEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], true) },
}

var providersDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], false) },
}

var providersPreferCmd = &cobra.Command{
	Use:   "prefer <name>",
	Short: "Try this provider first, regardless of priority",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		prefs, err := app.prefs.Load()
		if err != nil {
			return err
		}
		prefs.Preferred = args[0]
		if err := app.prefs.Save(prefs); err != nil {
			return err
		}
		fmt.Printf("Preferred provider set to %s\n", args[0])
		return nil
	},
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()

	prefs, err := app.prefs.Load()
	if err != nil {
		return err
	}
	if prefs.Enabled == nil {
		prefs.Enabled = make(map[string]bool)
	}
	prefs.Enabled[name] = enabled
	if err := app.prefs.Save(prefs); err != nil {
		return err
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("Provider %s %s\n", name, state)
	return nil
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd, providersEnableCmd, providersDisableCmd, providersPreferCmd)
}
