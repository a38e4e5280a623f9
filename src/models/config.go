package models

// MConfig Structure
type MConfig struct {
	Name     string                   `yaml:"name"`
	Host     string                   `yaml:"host"`
	Port     int                      `yaml:"port"`
	LogLevel string                   `yaml:"log_level"`
	Storage  MStorageConfig           `yaml:"storage"`
	Network  MNetworkConfig           `yaml:"network"`
	Cache    MCacheConfig             `yaml:"cache"`
	Markets  map[string]MMarketConfig `yaml:"markets"`
	Symbols  []string                 `yaml:"symbols"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

// MNetworkConfig is the explicit transport policy handed to every adapter at
// construction time. Nothing here is ever applied through global state.
type MNetworkConfig struct {
	RequestTimeout int               `yaml:"timeout"`
	MaxRetries     int               `yaml:"retries"`
	Proxy          string            `yaml:"proxy"`
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	InsecureTLS    bool              `yaml:"insecure_tls"`
}

// MCacheConfig carries one TTL per data class. Quotes move on a seconds
// scale, intraday bars on tens of seconds, daily history on hours.
type MCacheConfig struct {
	QuoteTTLSeconds    int `yaml:"quote_ttl_seconds"`
	IntradayTTLSeconds int `yaml:"intraday_ttl_seconds"`
	DailyTTLSeconds    int `yaml:"daily_ttl_seconds"`
}

// MMarketConfig describes one market's trading-hour window, the grace window
// after close during which auction trades still carry real timestamps, the
// lot-to-shares conversion factor, and the benchmark instrument.
type MMarketConfig struct {
	Timezone           string  `yaml:"timezone"`
	OpenTime           string  `yaml:"open_time"`  // "09:00" local
	CloseTime          string  `yaml:"close_time"` // "13:30" local
	CutoffGraceMinutes int     `yaml:"cutoff_grace_minutes"`
	LotSize            float64 `yaml:"lot_size"`
	Benchmark          string  `yaml:"benchmark"`
	MIC                string  `yaml:"mic"` // ISO 10383, for the holiday calendar
	Currency           string  `yaml:"currency"`
}
