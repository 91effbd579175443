package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"candleChart/internal/adapters/logger" // Import the logger package for LogLevel
	"candleChart/internal/chart"
	"candleChart/internal/domain"
	"candleChart/internal/indicators"
)

// Config holds all application configuration.
type Config struct {
	// Chart output
	ChartOutputPath      string
	ChartDPI             float64
	ChartWidth           int
	ChartHeight          int
	ChartTitle           string
	ChartYLabel          string
	ChartMAPeriods       []int // e.g., 20,50
	ChartMAType          indicators.MovingAverageType
	ChartWarnTooMuchData int    // Candle count above which a warning is logged, 0 disables
	ChartStyleFile       string // Optional YAML style overrides

	// Storage
	DBPath        string
	CandlesDir    string
	TradesCSVPath string

	// Binance API (public klines work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Kline download
	FetchSymbol    string
	FetchInterval  string
	FetchDays      int
	FetchPageDelay time.Duration

	// HTTP
	HTTPAddr string

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // "text" or "json"
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	defaults := chart.DefaultConfig()

	// Chart output
	cfg.ChartOutputPath = getEnv("CHART_OUTPUT_PATH", defaults.OutputPath)

	cfg.ChartDPI, err = getEnvAsFloatRequired("CHART_DPI", defaults.DPI)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_DPI: %v", err))
	} else if cfg.ChartDPI <= 0 {
		errs = append(errs, "CHART_DPI must be positive")
	}

	cfg.ChartWidth, err = getEnvAsIntRequired("CHART_WIDTH", defaults.Width)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_WIDTH: %v", err))
	} else if cfg.ChartWidth <= 0 {
		errs = append(errs, "CHART_WIDTH must be positive")
	}

	cfg.ChartHeight, err = getEnvAsIntRequired("CHART_HEIGHT", defaults.Height)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_HEIGHT: %v", err))
	} else if cfg.ChartHeight <= 0 {
		errs = append(errs, "CHART_HEIGHT must be positive")
	}

	cfg.ChartTitle = getEnv("CHART_TITLE", defaults.Title)
	cfg.ChartYLabel = getEnv("CHART_YLABEL", defaults.YLabel)

	cfg.ChartMAPeriods, err = getEnvAsIntList("CHART_MA_PERIODS", defaults.MovingAverages)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_MA_PERIODS: %v", err))
	} else {
		for _, p := range cfg.ChartMAPeriods {
			if p <= 0 {
				errs = append(errs, "CHART_MA_PERIODS must contain only positive periods")
				break
			}
		}
	}

	cfg.ChartMAType, err = indicators.ParseMovingAverageType(getEnv("CHART_MA_TYPE", string(defaults.MovingAverageType)))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_MA_TYPE: %v", err))
	}

	cfg.ChartWarnTooMuchData, err = getEnvAsIntRequired("CHART_WARN_TOO_MUCH_DATA", defaults.WarnTooMuchData)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CHART_WARN_TOO_MUCH_DATA: %v", err))
	} else if cfg.ChartWarnTooMuchData < 0 {
		errs = append(errs, "CHART_WARN_TOO_MUCH_DATA cannot be negative")
	}

	cfg.ChartStyleFile = getEnv("CHART_STYLE_FILE", "")

	// Storage
	cfg.DBPath = getEnv("DB_PATH", "./data/charts.db")
	cfg.CandlesDir = getEnv("CANDLES_DIR", "logs/candles")
	cfg.TradesCSVPath = getEnv("TRADES_CSV_PATH", "logs/trades.csv")

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Kline download
	cfg.FetchSymbol = strings.ToUpper(getEnv("FETCH_SYMBOL", "ETHUSDT"))
	cfg.FetchInterval = getEnv("FETCH_INTERVAL", "1m")
	if _, err := domain.TimeframeToDuration(cfg.FetchInterval); err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_INTERVAL: %v", err))
	}
	cfg.FetchDays, err = getEnvAsIntRequired("FETCH_DAYS", 90)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_DAYS: %v", err))
	} else if cfg.FetchDays <= 0 {
		errs = append(errs, "FETCH_DAYS must be positive")
	}
	pageDelayMs := getEnvAsInt("FETCH_PAGE_DELAY_MS", 250)
	if pageDelayMs < 0 {
		errs = append(errs, "FETCH_PAGE_DELAY_MS cannot be negative")
	}
	cfg.FetchPageDelay = time.Duration(pageDelayMs) * time.Millisecond

	// HTTP
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be 'text' or 'json'")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ChartConfig builds the renderer configuration.
func (c *Config) ChartConfig() chart.Config {
	periods := make([]int, len(c.ChartMAPeriods))
	copy(periods, c.ChartMAPeriods)
	return chart.Config{
		OutputPath:        c.ChartOutputPath,
		Width:             c.ChartWidth,
		Height:            c.ChartHeight,
		DPI:               c.ChartDPI,
		Title:             c.ChartTitle,
		YLabel:            c.ChartYLabel,
		MovingAverages:    periods,
		MovingAverageType: c.ChartMAType,
		WarnTooMuchData:   c.ChartWarnTooMuchData,
	}
}

// ChartStyle returns the default style with the optional style file applied.
func (c *Config) ChartStyle() (chart.Style, error) {
	style := chart.DefaultStyle()
	if c.ChartStyleFile == "" {
		return style, nil
	}
	overrides, err := LoadStyleFile(c.ChartStyleFile)
	if err != nil {
		return chart.Style{}, err
	}
	return overrides.Apply(style)
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

// getEnvAsIntList parses a comma separated list such as "20,50". An explicit
// empty list ("none") disables the entries entirely.
func getEnvAsIntList(key string, defaultValue []int) ([]int, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	if strings.EqualFold(valueStr, "none") {
		return []int{}, nil
	}
	parts := strings.Split(valueStr, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid integer value '%s' for key %s: %w", part, key, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
