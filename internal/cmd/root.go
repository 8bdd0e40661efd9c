package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wokspace/wok/internal/config"
	"github.com/wokspace/wok/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "wok",
	Short: "Coordinate one feature branch across many git repositories",
	Long: `wok keeps a root repository and a set of satellite repositories on the
same feature branch. The root repository holds a manifest listing every
satellite with the branch it is on; start, join, push, finish, sync, tag
and fork move the whole workspace together.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// PrintError writes err to w. Refusals print as-is; failures of git or of
// wok itself are marked as errors.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if errors.GetSeverity(err) >= errors.SeverityError {
		fmt.Fprintf(w, "wok: error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "wok: %v\n", err)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/wok/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("trunk", "", "branch that finish squashes into (default \"master\")")
	bindSettingFlags(flags)
}

// settingFlags maps global flags to the settings keys they override.
var settingFlags = map[string]string{
	"config":    "config",
	"log-level": "logging.level",
	"trunk":     "trunk",
}

func bindSettingFlags(flags *pflag.FlagSet) {
	for name, key := range settingFlags {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/wok")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WOK")
	// e.g. WOK_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
