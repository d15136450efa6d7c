package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ashfaaq98/clients-console/internal/prefs"
)

var (
	cfgFile      string
	dbPath       string
	redisURL     string
	logLevel     string
	prefsBackend string
	prefsPath    string
	sourceName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clients-console",
	Short: "Terminal client table with multi-column sorting",
	Long: `Clients-console is a terminal-first client directory. It lists client
records with category tabs, search and status filters, and an ordered list
of sort criteria that is remembered between sessions.

Features:
- Category tabs (All, Individual, Company), search and status filters
- Multi-criteria stable sorting with priority reordering
- Sort preferences stored in a file, SQLite or Redis
- Live sort sync between consoles over Redis Streams
- SQLite client storage with JSON/JSONL import`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clients-console.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/clients.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis connection URL (empty disables sort sync)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&prefsBackend, "prefs", "file", "Sort preference backend (file, sqlite, redis, none)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs-path", "./data/preferences.json", "Preference file for the file backend")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "sample", "Client record source (sample, db)")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("prefs.backend", rootCmd.PersistentFlags().Lookup("prefs"))
	viper.BindPFlag("prefs.path", rootCmd.PersistentFlags().Lookup("prefs-path"))
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".clients-console" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".clients-console")
	}

	viper.SetEnvPrefix("CLIENTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("database.path", "./data/clients.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("prefs.backend", "file")
	viper.SetDefault("prefs.path", "./data/preferences.json")
	viper.SetDefault("prefs.redis_prefix", prefs.DefaultRedisPrefix)
	viper.SetDefault("source", "sample")
	viper.SetDefault("ui.theme", "dark")
	viper.SetDefault("ui.export_dir", "./exports")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Prefs: PrefsConfig{
			Backend:     viper.GetString("prefs.backend"),
			Path:        viper.GetString("prefs.path"),
			RedisPrefix: viper.GetString("prefs.redis_prefix"),
		},
		Source: viper.GetString("source"),
		UI: UIConfig{
			Theme:     viper.GetString("ui.theme"),
			ExportDir: viper.GetString("ui.export_dir"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Prefs    PrefsConfig    `mapstructure:"prefs"`
	Source   string         `mapstructure:"source"`
	UI       UIConfig       `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type PrefsConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type UIConfig struct {
	Theme     string `mapstructure:"theme"`
	ExportDir string `mapstructure:"export_dir"`
}
