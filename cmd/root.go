package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	app       = "resume-matcher"
	envPrefix = "RESUME_MATCHER"
)

type Config struct {
	Server          *ServerConfig `mapstructure:"server" validate:"required"`
	PreferencesFile string        `mapstructure:"preferences-file"`
	LogFile         string        `mapstructure:"log-file"`
	Render          *RenderConfig `mapstructure:"render" validate:"required"`
}

type ServerConfig struct {
	URL       string        `mapstructure:"url" validate:"required,http_url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type RenderConfig struct {
	Animate bool `mapstructure:"animate"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "resume-matcher scores a resume against a job description using a matcher backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("server", "", "matcher backend url (overrides server.url)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
}

func initConfig() {
	// .env is optional, variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	// We can't proceed if the config file parsed with error.
	if err := configure(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// configure sets defaults and environment overrides on v and reads the config
// file. A missing default config file is not an error, an explicit one is.
func configure(v *viper.Viper, file string) error {
	v.SetDefault("server.url", "http://localhost:5000")
	v.SetDefault("server.token", "")
	v.SetDefault("server.token-file", "")
	v.SetDefault("server.user-agent", "")
	v.SetDefault("server.timeout", time.Duration(0))
	v.SetDefault("preferences-file", "")
	v.SetDefault("log-file", "")
	v.SetDefault("render.animate", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// setup loads the config and builds the logger shared by the commands that
// talk to the backend.
func setup() (*Config, *zap.Logger) {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	base, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  config.LogFile,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	lg := logger.WithSessionFields(base, config.Server.URL, version)

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	lg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, lg
}

// redacted returns a copy of config safe for logging.
func redacted(config *Config) Config {
	c := *config
	if c.Server != nil && c.Server.Token != "" {
		server := *c.Server
		server.Token = "***"
		c.Server = &server
	}
	return c
}
