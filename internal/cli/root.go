package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppetrenko/veridex/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dataDir string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veridex",
	Short: "Veridex - claim accumulation and validation over a shared file store",
	Long: `Veridex accumulates short natural-language claims gathered from search
and language-model calls, classifies them, and periodically re-examines the
accumulated claims to flag duplicates, contradictions, and weak evidence.

Findings are recorded as append-only Validation records with confidence
recommendations, plus follow-up Questions for a human or downstream agent.
Detection is heuristic: Veridex flags what looks inconsistent, it does not
prove anything.

Independent processes (collector, scheduler, validator) coordinate solely
through flat JSON logs guarded by an advisory file lock.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("veridex v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.veridex/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory holding the claim store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the .env sidecar, the config file, and VERIDEX_* env vars
func initConfig() {
	// Load .env and its secret sidecar if present; API keys usually live
	// there rather than in the config file.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.secret")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.veridex")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("VERIDEX")
	viper.AutomaticEnv()

	model.RegisterDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the effective configuration, applying global
// flags on top of env/file/default values.
func loadConfig() model.Config {
	cfg := model.FromViper(viper.GetViper())
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	return cfg
}
