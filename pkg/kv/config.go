package kv

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates and selects the backing store.
type Config interface {
	BasePath() string
	Backend() string
}

// FileConfig is the resolved configuration from .benchquest.yaml, the
// environment and defaults.
type FileConfig struct {
	Path      string `json:"path"`
	Store     string `json:"backend"`
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
	ExportDir string `json:"exportDir"`
	// File is the config file that was read, empty when none was found.
	File string `json:"file,omitempty"`
}

func (f *FileConfig) BasePath() string {
	return f.Path
}

func (f *FileConfig) Backend() string {
	return f.Store
}

// LoadConfig reads an optional .env, then .benchquest.yaml from
// $BENCHQUEST_CONFIG_PATH or the working directory, then BENCHQUEST_* env vars.
func LoadConfig() (*FileConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("path", "~/.benchquest.db")
	v.SetDefault("backend", BackendDiskv)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("export.dir", ".")
	v.SetConfigName(".benchquest") // .yaml is implicit
	v.SetEnvPrefix("BENCHQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("BENCHQUEST_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("kv: reading config file: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("kv: expand path: %w", err)
	}
	exportDir, err := homedir.Expand(v.GetString("export.dir"))
	if err != nil {
		return nil, fmt.Errorf("kv: expand export dir: %w", err)
	}

	return &FileConfig{
		Path:      path,
		Store:     v.GetString("backend"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		ExportDir: exportDir,
		File:      v.ConfigFileUsed(),
	}, nil
}
