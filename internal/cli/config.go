package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initViper wires viper with config paths, env, and flag bindings. Non-fatal:
// a missing or unreadable config file just leaves flag defaults in place.
func initViper(root *cobra.Command) {
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	viper.AddConfigPath("$HOME/.config/tubegrab")

	// Environment variables: TUBEGRAB_*
	viper.SetEnvPrefix("TUBEGRAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, name := range []string{"url", "dir", "format", "quality", "ffmpeg", "verbose"} {
		_ = viper.BindPFlag(name, root.Flags().Lookup(name))
	}

	_ = viper.ReadInConfig()
}

// resolveString returns the effective value for a flag: an explicitly set
// flag wins, then env/config via viper, then the flag default.
func resolveString(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if viper.IsSet(name) {
		return viper.GetString(name)
	}
	if flag == nil {
		return ""
	}
	return flag.DefValue
}

// resolveBool is resolveString for boolean flags.
func resolveBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag != nil && flag.Changed {
		return flag.Value.String() == "true"
	}
	if viper.IsSet(name) {
		return viper.GetBool(name)
	}
	return flag != nil && flag.DefValue == "true"
}
