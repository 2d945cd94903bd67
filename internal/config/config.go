package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	JWTSecret string `env:"JWT_SECRET,required"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional resolved-chain cache. Disabled when RedisAddr is empty.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ChainCacheTTL time.Duration `env:"CHAIN_CACHE_TTL" envDefault:"30s"`

	// Commission policy. Each percentage applies to the previous figure in
	// the breakdown: the pool is carved from the source reward, the fee
	// from the pool, the upliner share from the remaining pool.
	CommissionPoolPercent float64 `env:"COMMISSION_POOL_PERCENT" envDefault:"80"`
	TradiFeePercent       float64 `env:"TRADI_FEE_PERCENT" envDefault:"5"`
	UplinerSharePercent   float64 `env:"UPLINER_SHARE_PERCENT" envDefault:"50"`

	// License bookkeeping spreadsheet. Disabled when SheetsSpreadsheetID is empty.
	SheetsCredentialsFile string `env:"SHEETS_CREDENTIALS_FILE"`
	SheetsSpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	SheetsName            string `env:"SHEETS_NAME" envDefault:"licenses"`

	// Upstream broker affiliate API. Proxy routes answer 404 when unset.
	BrokerBaseURL string `env:"BROKER_BASE_URL"`
	BrokerToken   string `env:"BROKER_TOKEN"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
