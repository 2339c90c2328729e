package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/server"
)

// initConfig loads ~/.rnaseq-viz.yaml over the built-in defaults. A missing
// config file is not an error.
func initConfig() {
	viper.SetConfigName(".rnaseq-viz")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetDefault("thresholds.padj", classify.DefaultPadjCutoff)
	viper.SetDefault("thresholds.up_lfc", classify.DefaultUpLFCCutoff)
	viper.SetDefault("thresholds.down_lfc", classify.DefaultDownLFCCutoff)
	viper.SetDefault("colors.upregulated", server.DefaultUpColor)
	viper.SetDefault("colors.downregulated", server.DefaultDownColor)
	viper.SetDefault("colors.not_significant", server.DefaultNSColor)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("input.delimiter", "auto")

	_ = viper.ReadInConfig()
}

func configThresholds() classify.Thresholds {
	return classify.Thresholds{
		PadjCutoff:    viper.GetFloat64("thresholds.padj"),
		UpLFCCutoff:   viper.GetFloat64("thresholds.up_lfc"),
		DownLFCCutoff: viper.GetFloat64("thresholds.down_lfc"),
	}
}

func configColors() server.Colors {
	return server.Colors{
		Upregulated:    viper.GetString("colors.upregulated"),
		Downregulated:  viper.GetString("colors.downregulated"),
		NotSignificant: viper.GetString("colors.not_significant"),
	}
}

func configDelimiter() string {
	return viper.GetString("input.delimiter")
}

func runConfig(args []string) int {
	cmd := newConfigCmd()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rnaseq-viz configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.rnaseq-viz.yaml.",
		Example: `  rnaseq-viz config                            # show the effective config
  rnaseq-viz config set thresholds.padj 0.01   # tighten the significance cutoff
  rnaseq-viz config get colors.upregulated     # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	// Parse boolean- and number-like values so thresholds round-trip as
	// floats rather than strings.
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			viper.Set(key, f)
		} else {
			viper.Set(key, value)
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".rnaseq-viz.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
