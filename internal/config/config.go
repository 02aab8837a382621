package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Phonemizer PhonemizerConfig `mapstructure:"phonemizer"`
	Text       TextConfig       `mapstructure:"text"`
	Server     ServerConfig     `mapstructure:"server"`
}

type PhonemizerConfig struct {
	Backend    string `mapstructure:"backend"`
	EspeakPath string `mapstructure:"espeak_path"`
}

type TextConfig struct {
	Pipeline    string `mapstructure:"pipeline"`
	Intersperse bool   `mapstructure:"intersperse"`
}

type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	Workers        int    `mapstructure:"workers"`
	MaxTextBytes   int    `mapstructure:"max_text_bytes"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Phonemizer: PhonemizerConfig{
			Backend:    BackendEspeak,
			EspeakPath: "",
		},
		Text: TextConfig{
			Pipeline:    "english_cleaners2",
			Intersperse: false,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			Workers:        2,
			MaxTextBytes:   4096,
			RequestTimeout: 60,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("phonemizer-backend", defaults.Phonemizer.Backend, "Phonemizer backend (espeak|goruut)")
	fs.String("phonemizer-espeak-path", defaults.Phonemizer.EspeakPath, "Path to espeak-ng executable (default: PATH lookup)")
	fs.String("text-pipeline", defaults.Text.Pipeline, "Cleaner pipeline name")
	fs.Bool("text-intersperse", defaults.Text.Intersperse, "Interleave the pad id into the output sequence")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent phonemization requests")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("MATCHATEXT")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("phonemizer.espeak_path", "MATCHATEXT_ESPEAK", "ESPEAK_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind espeak env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("matchatext")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("phonemizer.backend", c.Phonemizer.Backend)
	v.SetDefault("phonemizer.espeak_path", c.Phonemizer.EspeakPath)
	v.SetDefault("text.pipeline", c.Text.Pipeline)
	v.SetDefault("text.intersperse", c.Text.Intersperse)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("phonemizer.backend", "phonemizer-backend")
	v.RegisterAlias("phonemizer.espeak_path", "phonemizer-espeak-path")
	v.RegisterAlias("text.pipeline", "text-pipeline")
	v.RegisterAlias("text.intersperse", "text-intersperse")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
}
