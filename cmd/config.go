package cmd

import (
	"fmt"
	"text/tabwriter"

	"livephoto-audio/infrastructure/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration values",
	Long: `Show and change values in the configuration file. Keys are dotted
section.field names as they appear in config.yaml.

Examples:
  livephoto-audio config list
  livephoto-audio config get audio.bitrate
  livephoto-audio config set export.method downloads
  livephoto-audio config set playback.poll_interval 100ms`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := configManager()
		if err != nil {
			return err
		}
		return RunConfigList(mgr, DefaultOutput)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := configManager()
		if err != nil {
			return err
		}
		return RunConfigGet(mgr, args[0], DefaultOutput)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value and save the file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := configManager()
		if err != nil {
			return err
		}
		return RunConfigSet(mgr, args[0], args[1], DefaultOutput)
	},
}

func configManager() (*config.ConfigManager, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return config.NewConfigManager(cfg, cfgFile), nil
}

// RunConfigList prints every key and value (for testing)
func RunConfigList(mgr *config.ConfigManager, out OutputWriter) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, e := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\n", e.Key, e.Value)
	}
	return w.Flush()
}

// RunConfigGet prints the value of key (for testing)
func RunConfigGet(mgr *config.ConfigManager, key string, out OutputWriter) error {
	value, err := mgr.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}

// RunConfigSet changes key and saves the configuration (for testing)
func RunConfigSet(mgr *config.ConfigManager, key, value string, out OutputWriter) error {
	if err := mgr.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}
