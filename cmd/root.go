package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/logger"
)

const (
	app = "interview-insights"
)

type Config struct {
	AI      *AIConfig      `mapstructure:"ai"`
	Server  *ServerConfig  `mapstructure:"server"`
	Extract *ExtractConfig `mapstructure:"extract"`
}

type AIConfig struct {
	Provider     string          `mapstructure:"provider"`
	MaxLogLength int             `mapstructure:"max-log-length"`
	Budgets      *BudgetsConfig  `mapstructure:"budgets"`
	Anthropic    *ProviderConfig `mapstructure:"anthropic"`
	Gemini       *ProviderConfig `mapstructure:"gemini"`
}

// BudgetsConfig holds output token budgets per request kind.
type BudgetsConfig struct {
	Acknowledge int `mapstructure:"acknowledge"`
	Analyze     int `mapstructure:"analyze"`
	Report      int `mapstructure:"report"`
}

type ProviderConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ServerConfig struct {
	Listen    string  `mapstructure:"listen"`
	MaxUpload string  `mapstructure:"max-upload"`
	RateLimit float64 `mapstructure:"rate-limit"`
	RateBurst int     `mapstructure:"rate-burst"`
}

type ExtractConfig struct {
	PDF  bool `mapstructure:"pdf"`
	Word bool `mapstructure:"word"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-insights turns interview notes into themes, insights and recommendations",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	envs := map[string]string{
		"ai.anthropic.api-key":      "ANTHROPIC_API_KEY",
		"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
		"ai.gemini.api-key":         "GEMINI_API_KEY",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"ai.provider":               "INSIGHTS_PROVIDER",
		"server.listen":             "INSIGHTS_LISTEN",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-insights.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "ai provider: anthropic, gemini or mock")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", providerAnthropic)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.budgets.acknowledge", 512)
	v.SetDefault("ai.budgets.analyze", 1024)
	v.SetDefault("ai.budgets.report", 4096)
	v.SetDefault("ai.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	v.SetDefault("server.listen", ":5000")
	v.SetDefault("server.max-upload", "50MB")
	v.SetDefault("server.rate-limit", 0)
	v.SetDefault("server.rate-burst", 10)
	v.SetDefault("extract.pdf", true)
	v.SetDefault("extract.word", true)
}

func initConfig() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads an explicit config file, or interview-insights.yaml from
// the working directory when present.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Budgets == nil {
		config.AI.Budgets = &BudgetsConfig{}
	}
	if config.AI.Anthropic == nil {
		config.AI.Anthropic = &ProviderConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &ProviderConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Extract == nil {
		config.Extract = &ExtractConfig{}
	}

	return config, nil
}

// newLogger builds the command logger from the persistent flags.
func newLogger(output string) (*zap.Logger, error) {
	return logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: output,
		App:    app,
	})
}
