// Package config layers defaults, an optional YAML file, ASTRA_* environment
// variables, a .env file and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"astra/internal/ipc"
)

const DefaultSystemPrompt = "Você é Astra, uma assistente pessoal de voz. " +
	"Responda sempre em português do Brasil, de forma curta e natural, " +
	"em no máximo três frases, sem usar markdown."

type Config struct {
	Log     string `mapstructure:"log"`
	Env     string `mapstructure:"env"`
	File    string `mapstructure:"config"`
	DataDir string `mapstructure:"data_dir"`
	Proxy   string `mapstructure:"proxy"`
	Socket  string `mapstructure:"socket"`

	Storage StorageConfig `mapstructure:"storage"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Voice   VoiceConfig   `mapstructure:"voice"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Weather WeatherConfig `mapstructure:"weather"`
	Wiki    WikiConfig    `mapstructure:"wiki"`
	Bus     BusConfig     `mapstructure:"bus"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	OSCtl   OSCtlConfig   `mapstructure:"osctl"`
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	MemoryFile    string `mapstructure:"memory_file"`
	RemindersFile string `mapstructure:"reminders_file"`
	SQLiteFile    string `mapstructure:"sqlite_file"`
}

type SpeechConfig struct {
	Language      string        `mapstructure:"language"`
	ListenTimeout time.Duration `mapstructure:"listen_timeout"`
	PhraseLimit   time.Duration `mapstructure:"phrase_limit"`
	Model         string        `mapstructure:"model"`
	Threads       int           `mapstructure:"threads"`
	Threshold     float64       `mapstructure:"threshold"`
	ReplayDir     string        `mapstructure:"replay_dir"`
	Beep          string        `mapstructure:"beep"`
}

type VoiceConfig struct {
	Name string `mapstructure:"name"`
	Duck bool   `mapstructure:"duck"`
}

type LLMConfig struct {
	Backend      string        `mapstructure:"backend"`
	URL          string        `mapstructure:"url"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type WeatherConfig struct {
	OpenCageKey string `mapstructure:"opencage_key"`
	GeocodeURL  string `mapstructure:"geocode_url"`
	ForecastURL string `mapstructure:"forecast_url"`
	Language    string `mapstructure:"language"`
}

type WikiConfig struct {
	Language  string `mapstructure:"language"`
	Sentences int    `mapstructure:"sentences"`
}

type BusConfig struct {
	URL string `mapstructure:"url"`
}

type NotifyConfig struct {
	Desktop bool `mapstructure:"desktop"`
}

type OSCtlConfig struct {
	ScreenshotDir string        `mapstructure:"screenshot_dir"`
	AppDirs       []string      `mapstructure:"app_dirs"`
	VolumeStep    int           `mapstructure:"volume_step"`
	ShutdownDelay time.Duration `mapstructure:"shutdown_delay"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"log":        "log",
	"env":        "env",
	"config":     "config",
	"data-dir":   "data_dir",
	"proxy":      "proxy",
	"socket":     "socket",
	"storage":    "storage.backend",
	"llm":        "llm.backend",
	"model":      "speech.model",
	"replay-dir": "speech.replay_dir",
}

func newFlagSet(name string) *cli.FlagSet {
	fs := cli.NewFlagSet(name, cli.ContinueOnError)
	fs.StringP("log", "l", "info", "Log level (debug|info|warn|error)")
	fs.StringP("env", "e", ".env", "Env file path")
	fs.StringP("config", "c", "", "YAML config file")
	fs.StringP("data-dir", "d", "", "Directory for memory and reminders")
	fs.StringP("proxy", "p", "", "SOCKS5 proxy address for outbound requests")
	fs.String("socket", ipc.DefaultSocket, "Control socket path")
	fs.String("storage", "file", "Storage backend (file|sqlite)")
	fs.String("llm", "ollama", "Conversational backend (ollama|openai)")
	fs.StringP("model", "m", "", "Whisper model path")
	fs.StringP("replay-dir", "r", "", "Read utterances from audio files instead of the microphone")
	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())

	v.SetDefault("storage.memory_file", "memoria.json")
	v.SetDefault("storage.reminders_file", "lembretes.yaml")
	v.SetDefault("storage.sqlite_file", "astra.db")

	v.SetDefault("speech.language", "pt")
	v.SetDefault("speech.listen_timeout", 5*time.Second)
	v.SetDefault("speech.phrase_limit", 10*time.Second)
	v.SetDefault("speech.model", "models/ggml-small.bin")
	v.SetDefault("speech.threshold", 0.015)
	v.SetDefault("speech.threads", 0)
	v.SetDefault("speech.beep", "")

	v.SetDefault("voice.name", "pt-br")
	v.SetDefault("voice.duck", true)

	v.SetDefault("proxy", "")
	v.SetDefault("llm.url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("weather.opencage_key", "")
	v.SetDefault("weather.geocode_url", "")
	v.SetDefault("weather.forecast_url", "")
	v.SetDefault("weather.language", "pt")

	v.SetDefault("wiki.language", "pt")
	v.SetDefault("wiki.sentences", 2)

	v.SetDefault("bus.url", "")
	v.SetDefault("notify.desktop", true)

	v.SetDefault("osctl.screenshot_dir", "")
	v.SetDefault("osctl.app_dirs", []string{})
	v.SetDefault("osctl.volume_step", 10)
	v.SetDefault("osctl.shutdown_delay", time.Minute)
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "astra")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "astra")
}

// Load parses args (without the program name). A missing .env file is not
// an error; a missing explicit config file is.
func Load(args []string) (*Config, error) {
	fs := newFlagSet("astra")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", flag, err)
		}
	}

	if env := v.GetString("env"); env != "" {
		if err := godotenv.Load(env); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", env, err)
		}
	}

	v.SetEnvPrefix("ASTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional names for the keys, next to the ASTRA_ ones.
	_ = v.BindEnv("weather.opencage_key", "ASTRA_WEATHER_OPENCAGE_KEY", "OPENCAGE_KEY")
	_ = v.BindEnv("llm.api_key", "ASTRA_LLM_API_KEY", "OPENAI_API_KEY")

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.backendDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// backendDefaults fills the model and endpoint of the chosen conversational
// backend. An empty URL for openai means the public API.
func (c *Config) backendDefaults() {
	switch c.LLM.Backend {
	case "ollama":
		if c.LLM.URL == "" {
			c.LLM.URL = "http://localhost:11434/api/generate"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "llama3"
		}
	case "openai":
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o-mini"
		}
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.LLM.Backend {
	case "ollama":
	case "openai":
		if c.LLM.APIKey == "" {
			return errors.New("openai backend needs OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown llm backend %q", c.LLM.Backend)
	}

	if c.Speech.ListenTimeout <= 0 || c.Speech.PhraseLimit <= 0 {
		return errors.New("speech timeouts must be positive")
	}
	if c.Wiki.Sentences < 1 {
		return errors.New("wiki.sentences must be at least 1")
	}
	return nil
}

// SQLitePath is the database file inside the data directory unless absolute.
func (c *Config) SQLitePath() string {
	if filepath.IsAbs(c.Storage.SQLiteFile) {
		return c.Storage.SQLiteFile
	}
	return filepath.Join(c.DataDir, c.Storage.SQLiteFile)
}
