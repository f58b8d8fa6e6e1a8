package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values can be written as "600s" or
// "48h" instead of raw nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type EngineConfig struct {
	Interval          Duration `yaml:"interval"`            // full cycle interval (default 600s)
	EVHorizon         Duration `yaml:"ev_horizon"`          // only matches starting within this window get EV-checked
	MinEVPercent      float64  `yaml:"min_ev_percent"`      // general EV cutoff (default 3.0)
	HighEVPercent     float64  `yaml:"high_ev_percent"`     // headline best-per-key cutoff (default 5.0)
	MinArbROIPercent  float64  `yaml:"min_arb_roi_percent"` // arbs below this ROI are noise (default 0.5)
	ArbTotalStake     float64  `yaml:"arb_total_stake"`     // stake used for the published split (default 100)
	EVAlertThreshold  float64  `yaml:"ev_alert_threshold"`  // percentage-point change needed to re-alert
	ArbAlertThreshold float64  `yaml:"arb_alert_threshold"`
	ClosingWindow     Duration `yaml:"closing_window"` // how close to kickoff closing odds are captured
	ReferenceBooks    []string `yaml:"reference_books"`
	Sports            []string `yaml:"sports"`
}

type FeedsConfig struct {
	Enabled   []string      `yaml:"enabled"`
	Timeout   Duration      `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	OddsAPI   OddsAPIConfig `yaml:"oddsapi"`
	Kambi     KambiConfig   `yaml:"kambi"`
	Coolbet   CoolbetConfig `yaml:"coolbet"`
}

type OddsAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Regions string `yaml:"regions"`
	Markets string `yaml:"markets"`
}

type KambiConfig struct {
	BaseURL string   `yaml:"base_url"`
	Brands  []string `yaml:"brands"` // Kambi white-label brand codes, e.g. ubse, nbse
}

type CoolbetConfig struct {
	BaseURL   string `yaml:"base_url"`
	MirrorURL string `yaml:"mirror_url"` // entry page used to resolve the live API host
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type APIConfig struct {
	Port               int      `yaml:"port"`
	APIKeys            []string `yaml:"api_keys"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins"`
	ReadHeaderTimeout  Duration `yaml:"read_header_timeout"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional JSON log file alongside stdout
}

// DefaultSports is the sport-key universe polled when the config lists none.
var DefaultSports = []string{
	"soccer_epl",
	"soccer_uefa_champs_league",
	"soccer_uefa_europa_league",
	"soccer_spain_la_liga",
	"soccer_germany_bundesliga",
	"soccer_italy_serie_a",
	"soccer_france_ligue_one",
	"soccer_netherlands_eredivisie",
	"soccer_portugal_primeira_liga",
	"soccer_usa_mls",
	"soccer_finland_veikkausliiga",
	"americanfootball_nfl",
	"americanfootball_ncaaf",
	"basketball_nba",
	"basketball_ncaab",
	"icehockey_nhl",
	"baseball_mlb",
	"basketball_euroleague",
	"basketball_wnba",
	"basketball_nbl",
	"icehockey_sweden_hockey_league",
	"icehockey_liiga",
	"mma_mixed_martial_arts",
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvOverrides()
	config.applyDefaults()

	return &config, nil
}

// applyEnvOverrides lets secrets come from the environment (a .env file in
// development) so the yaml file stays safe to commit.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		c.Feeds.OddsAPI.APIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		if ids := parseChatIDs(v); len(ids) > 0 {
			c.Telegram.ChatIDs = ids
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.Email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		c.Email.To = splitTrimmed(v)
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		c.API.APIKeys = splitTrimmed(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Engine.Interval.Duration <= 0 {
		c.Engine.Interval.Duration = 600 * time.Second
	}
	if c.Engine.EVHorizon.Duration <= 0 {
		c.Engine.EVHorizon.Duration = 48 * time.Hour
	}
	if c.Engine.MinEVPercent <= 0 {
		c.Engine.MinEVPercent = 3.0
	}
	if c.Engine.HighEVPercent <= 0 {
		c.Engine.HighEVPercent = 5.0
	}
	if c.Engine.MinArbROIPercent <= 0 {
		c.Engine.MinArbROIPercent = 0.5
	}
	if c.Engine.ArbTotalStake <= 0 {
		c.Engine.ArbTotalStake = 100.0
	}
	if c.Engine.EVAlertThreshold <= 0 {
		c.Engine.EVAlertThreshold = 0.5
	}
	if c.Engine.ArbAlertThreshold <= 0 {
		c.Engine.ArbAlertThreshold = 0.5
	}
	if c.Engine.ClosingWindow.Duration <= 0 {
		c.Engine.ClosingWindow.Duration = 20 * time.Minute
	}
	if len(c.Engine.ReferenceBooks) == 0 {
		c.Engine.ReferenceBooks = []string{"Pinnacle"}
	}
	if len(c.Engine.Sports) == 0 {
		c.Engine.Sports = DefaultSports
	}
	if c.Feeds.Timeout.Duration <= 0 {
		c.Feeds.Timeout.Duration = 30 * time.Second
	}
	if c.Feeds.OddsAPI.BaseURL == "" {
		c.Feeds.OddsAPI.BaseURL = "https://api.the-odds-api.com"
	}
	if c.Feeds.OddsAPI.Regions == "" {
		c.Feeds.OddsAPI.Regions = "eu,us"
	}
	if c.Feeds.OddsAPI.Markets == "" {
		c.Feeds.OddsAPI.Markets = "h2h,totals,spreads"
	}
	if c.API.Port <= 0 {
		c.API.Port = 8080
	}
	if c.Metrics.Port <= 0 {
		c.Metrics.Port = 9091
	}
	if c.API.RateLimitPerMinute <= 0 {
		c.API.RateLimitPerMinute = 60
	}
	if c.API.ReadHeaderTimeout.Duration <= 0 {
		c.API.ReadHeaderTimeout.Duration = 5 * time.Second
	}
}

func parseChatIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
