// Package config provides configuration management for the advisor backtester.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Indicators IndicatorsConfig `mapstructure:"indicators"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Signal     SignalConfig     `mapstructure:"signal"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Advisor    AdvisorConfig    `mapstructure:"advisor"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" default:"advisor-backtest" validate:"required"`
	Environment string `mapstructure:"environment" default:"development" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" default:"info" validate:"required,loglevel"`
}

// BacktestConfig represents the simulated run
type BacktestConfig struct {
	Instrument       string  `mapstructure:"instrument" validate:"required"`
	Weeks            int     `mapstructure:"weeks" default:"52" validate:"gt=0,lte=1040"`
	InitialCapital   float64 `mapstructure:"initial_capital" default:"10000" validate:"gt=0"`
	BufferWeeks      int     `mapstructure:"buffer_weeks" default:"26" validate:"gte=0"`
	LookbackBars     int     `mapstructure:"lookback_bars" default:"180" validate:"gt=0"`
	MinRequiredBars  int     `mapstructure:"min_required_bars" default:"50" validate:"gte=2"`
	NewsLookbackDays int     `mapstructure:"news_lookback_days" default:"7" validate:"gte=0"`
	OutputPath       string  `mapstructure:"output_path" default:"./output/backtest_result.json" validate:"required"`
	HistoryCSVPath   string  `mapstructure:"history_csv_path"`
}

// IndicatorsConfig represents indicator window lengths
type IndicatorsConfig struct {
	EMAFast         int     `mapstructure:"ema_fast" default:"20" validate:"gt=0"`
	EMASlow         int     `mapstructure:"ema_slow" default:"50" validate:"gt=0"`
	MACDFast        int     `mapstructure:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow        int     `mapstructure:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal      int     `mapstructure:"macd_signal" default:"9" validate:"gt=0"`
	RSIPeriod       int     `mapstructure:"rsi_period" default:"14" validate:"gt=0"`
	BollingerPeriod int     `mapstructure:"bollinger_period" default:"20" validate:"gte=2"`
	BollingerStdDev float64 `mapstructure:"bollinger_std_dev" default:"2" validate:"gt=0"`
}

// RiskConfig represents the heuristic bounds of the risk engine
type RiskConfig struct {
	TradingDaysPerYear   int     `mapstructure:"trading_days_per_year" default:"252" validate:"gt=0"`
	OutlierReturnLimit   float64 `mapstructure:"outlier_return_limit" default:"10" validate:"gt=0"`
	VolatilityFloor      float64 `mapstructure:"volatility_floor" default:"0.000001" validate:"gt=0"`
	VaRMinObservations   int     `mapstructure:"var_min_observations" default:"20" validate:"gt=0"`
	VaRPercentile        float64 `mapstructure:"var_percentile" default:"5" validate:"gt=0,lt=100"`
	StopLossMultiplier   float64 `mapstructure:"stop_loss_multiplier" default:"1.5" validate:"gt=0"`
	StopLossMin          float64 `mapstructure:"stop_loss_min" default:"0.001" validate:"gte=0"`
	StopLossMax          float64 `mapstructure:"stop_loss_max" default:"0.5" validate:"gt=0"`
	TakeProfitMultiplier float64 `mapstructure:"take_profit_multiplier" default:"2.5" validate:"gt=0"`
	TakeProfitMin        float64 `mapstructure:"take_profit_min" default:"0.002" validate:"gte=0"`
	TakeProfitMax        float64 `mapstructure:"take_profit_max" default:"1" validate:"gt=0"`
	PositionSizeMin      float64 `mapstructure:"position_size_min" default:"0.1" validate:"gte=0"`
	PositionSizeMax      float64 `mapstructure:"position_size_max" default:"10" validate:"gt=0"`
}

// SignalConfig represents the rule-based scoring weights
type SignalConfig struct {
	TrendWeight    float64 `mapstructure:"trend_weight" default:"1" validate:"gte=0"`
	MomentumWeight float64 `mapstructure:"momentum_weight" default:"1" validate:"gte=0"`
	RSIWeight      float64 `mapstructure:"rsi_weight" default:"0.5" validate:"gte=0"`
	BandWeight     float64 `mapstructure:"band_weight" default:"0.5" validate:"gte=0"`
	RSIOversold    float64 `mapstructure:"rsi_oversold" default:"30" validate:"gte=0,lte=100"`
	RSIOverbought  float64 `mapstructure:"rsi_overbought" default:"70" validate:"gte=0,lte=100"`
	BuyThreshold   float64 `mapstructure:"buy_threshold" default:"1.5" validate:"gt=0"`
	SellThreshold  float64 `mapstructure:"sell_threshold" default:"-1.5" validate:"lt=0"`
}

// DataSourceConfig represents the market data provider
type DataSourceConfig struct {
	Provider          string  `mapstructure:"provider" default:"polygon" validate:"required,datasource"`
	BaseURL           string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	CSVDir            string  `mapstructure:"csv_dir"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" default:"30" validate:"gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" default:"5" validate:"gte=0"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute" default:"5" validate:"gt=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" default:"5" validate:"gt=0"`
}

// AdvisorConfig represents the recommendation provider
type AdvisorConfig struct {
	Type           string `mapstructure:"type" default:"rule" validate:"required,advisor"`
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"60" validate:"gt=0"`
	MaxRetries     int    `mapstructure:"max_retries" default:"2" validate:"gte=0"`
	CacheEnabled   bool   `mapstructure:"cache_enabled"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours" default:"168" validate:"gt=0"`
}

// StorageConfig represents where run results are recorded besides the JSON output
type StorageConfig struct {
	Driver     string         `mapstructure:"driver" default:"none" validate:"required,storage"`
	SQLitePath string         `mapstructure:"sqlite_path" default:"./output/backtests.db"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" default:"localhost"`
	Port           int    `mapstructure:"port" default:"5432" validate:"min=1,max=65535"`
	Name           string `mapstructure:"name" default:"backtests"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" default:"disable" validate:"oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" default:"4" validate:"gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" default:"9090" validate:"min=1,max=65535"`
	Path    string `mapstructure:"path" default:"/metrics" validate:"required"`
}

// ScheduleConfig represents recurring backtest runs
type ScheduleConfig struct {
	Cron        string   `mapstructure:"cron"`
	Instruments []string `mapstructure:"instruments"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DataSourceTimeout returns the per-request data source timeout
func (c *Config) DataSourceTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// AdvisorCacheTTL returns how long advisor recommendations are memoised
func (c *Config) AdvisorCacheTTL() time.Duration {
	return time.Duration(c.Advisor.CacheTTLHours) * time.Hour
}

// AdvisorTimeout returns the per-call advisor timeout
func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Advisor.TimeoutSeconds) * time.Second
}
