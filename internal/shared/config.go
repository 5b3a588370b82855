package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "BANK_REVIEWS_CONFIG"

type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	Paths     PathsConfig     `yaml:"paths"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Themes    ThemesConfig    `yaml:"themes"`
	Keywords  KeywordsConfig  `yaml:"keywords"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Scraper   ScraperConfig   `yaml:"scraper"`

	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type PathsConfig struct {
	RawDir      string `yaml:"raw_dir"`
	RawPattern  string `yaml:"raw_pattern"`
	CleanedFile string `yaml:"cleaned_file"`
	ResultsFile string `yaml:"results_file"`
	ReportsDir  string `yaml:"reports_dir"`
}

// SentimentConfig holds the label thresholds: score >= Positive is Positive,
// score <= Negative is Negative, anything between is Neutral.
type SentimentConfig struct {
	Positive float64 `yaml:"positive"`
	Negative float64 `yaml:"negative"`
}

// ThemesConfig is the top-k policy of the themes report and of the
// per-bank word cloud data.
type ThemesConfig struct {
	Keywords   int `yaml:"keywords"`
	Themes     int `yaml:"themes"`
	PainPoints int `yaml:"pain_points"`
	WordCloud  int `yaml:"word_cloud"`
}

type KeywordsConfig struct {
	Lemmatizer string `yaml:"lemmatizer"` // golem|snowball
}

type DBConfig struct {
	Driver string `yaml:"driver"` // mysql|postgres
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	Pass string `yaml:"password"`
	DB   int    `yaml:"db"`
}

type ScraperConfig struct {
	BaseURL string            `yaml:"base_url"`
	APIKey  string            `yaml:"api_key"`
	RPS     int               `yaml:"rps"`
	Workers int               `yaml:"workers"`
	Count   int               `yaml:"count"`
	Lang    string            `yaml:"lang"`
	Country string            `yaml:"country"`
	Apps    map[string]string `yaml:"apps"` // bank name -> app id
}

// DefaultApps are the bank apps tracked when no config file overrides them.
var DefaultApps = map[string]string{
	"CBE":    "com.combanketh.mobilebanking",
	"BOA":    "com.boa.boaMobileBanking",
	"Dashen": "com.dashen.dashensuperapp",
}

func Default() Config {
	apps := make(map[string]string, len(DefaultApps))
	for k, v := range DefaultApps {
		apps[k] = v
	}
	return Config{
		AppEnv:   "prod",
		LogLevel: "info",
		HTTPAddr: ":8080",
		Paths: PathsConfig{
			RawDir:      "data/raw",
			RawPattern:  "reviews_raw_*.csv",
			CleanedFile: "data/processed/reviews_cleaned.csv",
			ResultsFile: "data/processed/sentiment_results.csv",
			ReportsDir:  "reports",
		},
		Sentiment: SentimentConfig{Positive: 0.05, Negative: -0.05},
		Themes:    ThemesConfig{Keywords: 10, Themes: 5, PainPoints: 3, WordCloud: 200},
		Keywords:  KeywordsConfig{Lemmatizer: "golem"},
		DB:        DBConfig{Driver: "mysql"},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		Scraper: ScraperConfig{
			BaseURL: "http://localhost:3000/v1",
			RPS:     5,
			Workers: 3,
			Count:   500,
			Lang:    "en",
			Country: "et",
			Apps:    apps,
		},
		CacheTTL: 15 * time.Minute,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// BANK_REVIEWS_CONFIG (if any), then environment variables. A .env file in
// the working directory is loaded first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("cannot read .env")
	}

	c := Default()
	if path := os.Getenv(configPathEnv); path != "" {
		if err := c.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	if c.Scraper.APIKey == "" {
		log.Debug().Msg("SCRAPER_API_KEY is empty")
	}
	return c, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	// An apps map in the file replaces the default set instead of merging into it.
	var peek struct {
		Scraper struct {
			Apps map[string]string `yaml:"apps"`
		} `yaml:"scraper"`
	}
	if err := yaml.Unmarshal(raw, &peek); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(peek.Scraper.Apps) > 0 {
		c.Scraper.Apps = nil
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = env("METRICS_ADDR", c.MetricsAddr)

	c.Paths.RawDir = env("RAW_DIR", c.Paths.RawDir)
	c.Paths.CleanedFile = env("CLEANED_FILE", c.Paths.CleanedFile)
	c.Paths.ResultsFile = env("RESULTS_FILE", c.Paths.ResultsFile)
	c.Paths.ReportsDir = env("REPORTS_DIR", c.Paths.ReportsDir)

	c.Sentiment.Positive = atof("SENTIMENT_POSITIVE", c.Sentiment.Positive)
	c.Sentiment.Negative = atof("SENTIMENT_NEGATIVE", c.Sentiment.Negative)
	c.Themes.Keywords = atoi("TOP_KEYWORDS", c.Themes.Keywords)
	c.Themes.Themes = atoi("TOP_THEMES", c.Themes.Themes)
	c.Themes.PainPoints = atoi("TOP_PAIN_POINTS", c.Themes.PainPoints)
	c.Themes.WordCloud = atoi("TOP_WORDCLOUD_WORDS", c.Themes.WordCloud)
	c.Keywords.Lemmatizer = env("LEMMATIZER", c.Keywords.Lemmatizer)

	c.DB.Driver = env("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = env("DB_DSN", c.DB.DSN)

	c.Redis.Addr = env("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Pass = env("REDIS_PASSWORD", c.Redis.Pass)
	c.Redis.DB = atoi("REDIS_DB", c.Redis.DB)

	c.Scraper.BaseURL = env("SCRAPER_BASE_URL", c.Scraper.BaseURL)
	c.Scraper.APIKey = env("SCRAPER_API_KEY", c.Scraper.APIKey)
	c.Scraper.RPS = atoi("SCRAPER_RPS", c.Scraper.RPS)
	c.Scraper.Workers = atoi("SCRAPER_WORKERS", c.Scraper.Workers)
	c.Scraper.Count = atoi("SCRAPER_COUNT", c.Scraper.Count)

	c.CacheTTL = time.Duration(atoi("CACHE_TTL_SECONDS", int(c.CacheTTL.Seconds()))) * time.Second
}

func (c Config) Validate() error {
	if c.Sentiment.Positive <= c.Sentiment.Negative {
		return fmt.Errorf("config: positive threshold %.3f must exceed negative threshold %.3f",
			c.Sentiment.Positive, c.Sentiment.Negative)
	}
	if c.Themes.Keywords < 0 || c.Themes.Themes < 0 || c.Themes.PainPoints < 0 || c.Themes.WordCloud < 0 {
		return errors.New("config: top-k limits must not be negative")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config: unsupported log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.DB.Driver) {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DB.Driver)
	}
	switch strings.ToLower(c.Keywords.Lemmatizer) {
	case "golem", "snowball":
	default:
		return fmt.Errorf("config: unsupported lemmatizer %q", c.Keywords.Lemmatizer)
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return def
}
