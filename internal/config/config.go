package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	viper "github.com/spf13/viper"
)

/*
把 init 跟 read 分開
init : 需要設置 viper watch 與 onConfigChange
read : 一般讀取，需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	DbName string `mapstructure:"POSTGRES_DB"`
	DbHost string `mapstructure:"POSTGRES_HOST"`
	DbPort string `mapstructure:"POSTGRES_PORT"`
	DbUser string `mapstructure:"POSTGRES_USER"`
	DbPas  string `mapstructure:"POSTGRES_PASSWORD"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	StockCacheTTL time.Duration `mapstructure:"STOCK_CACHE_TTL"`

	KafkaBrokers           []string `mapstructure:"KAFKA_BROKERS"`
	OrderConfirmationTopic string   `mapstructure:"ORDER_CONFIRMATION_TOPIC"`

	AuthTokenKey string `mapstructure:"AUTH_TOKEN_KEY"`

	// Pending 訂單逾期回收
	OrderStaleness time.Duration `mapstructure:"ORDER_STALENESS"`
	SweepInterval  time.Duration `mapstructure:"SWEEP_INTERVAL"`

	SeedOnStart bool `mapstructure:"SEED_ON_START"`
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal().Err(err).Msg("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.Config = cf
				} else {
					log.Panic().Err(err).Msg("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤，由外部決定要不要 Fatal，畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	configSingleton.mu.Lock()
	defer configSingleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("STOCK_CACHE_TTL", 30*time.Second)
	viper.SetDefault("ORDER_STALENESS", time.Minute)
	viper.SetDefault("SWEEP_INTERVAL", 30*time.Second)
	viper.SetDefault("ORDER_CONFIRMATION_TOPIC", "order-confirmation")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}
