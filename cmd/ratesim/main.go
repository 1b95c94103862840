package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/ratesim/internal/config"
	"github.com/rgehrsitz/ratesim/internal/logging"
)

const defaultConfigFile = "ratesim.yaml"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	logger  logging.Logger = logging.NopLogger{}
)

var rootCmd = &cobra.Command{
	Use:   "ratesim",
	Short: "Marketplace premium and subsidy what-if calculator",
	Long: `ratesim loads the marketplace rate and plan attribute public use files, applies
proposed insurer rate changes and shows how premiums, benchmark silver plans,
subsidies and net premiums move across the income grid.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "scenario file (default: ./"+defaultConfigFile+" if it exists)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("store-driver", "", "rate change store (memory, sqlite, postgres)")
	flags.String("store-dsn", "", "rate change store location: sqlite file or postgres connection string")
	flags.String("rate-puf", "", "rate public use file (overrides data.rate_puf)")
	flags.String("attributes-puf", "", "plan attributes public use file (overrides data.plan_attributes_puf)")
	flags.Bool("quiet", false, "hide load progress")

	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyStoreDriver, flags.Lookup("store-driver"))
	_ = viper.BindPFlag(config.KeyStoreDSN, flags.Lookup("store-dsn"))
	_ = viper.BindPFlag(config.KeyRatePUF, flags.Lookup("rate-puf"))
	_ = viper.BindPFlag(config.KeyAttrPUF, flags.Lookup("attributes-puf"))

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd())
}

func initConfig(cmd *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("RATESIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" && fileExists(defaultConfigFile) {
		cfgFile = defaultConfigFile
	}

	l, err := logging.Setup(cmd.ErrOrStderr(), viper.GetString("logging.level"), viper.GetString("logging.format"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	logger = l
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ratesim %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version + " " + bi.GoVersion
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
