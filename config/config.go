package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const productionEnvironment = "production"

type Config struct {
	ServicePort      string
	MetricsPort      string
	Environment      string
	PostgreSQLConfig PostgreSQLConfig
	JWTSecret        string
	KafkaConfig      KafkaConfig
	TracingConfig    TracingConfig
	AuthzConfig      AuthzConfig

	// IgnoreJWTValidation reads bearer token claims without checking the signature.
	IgnoreJWTValidation bool
	ExpirySweepInterval time.Duration
}

type PostgreSQLConfig struct {
	DBHost     string
	DBName     string
	DBPort     string
	DBUsername string
	DBPassword string
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type TracingConfig struct {
	CollectorHost string
	// SampleRatio applies to root spans only; child spans follow their parent.
	SampleRatio float64
}

type AuthzConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
	// DisableGroupSync turns the identity group synchronizer into a no-op.
	DisableGroupSync bool
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		Environment: os.Getenv("ENVIRONMENT"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		KafkaConfig: KafkaConfig{
			BrokerAddress: os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:   os.Getenv("BROKER_TOPIC"),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
			SampleRatio:   getFloat("TRACING_SAMPLE_RATIO", 1),
		},
		AuthzConfig: AuthzConfig{
			BaseURL:          os.Getenv("AUTHZ_BASE_URL"),
			APIToken:         os.Getenv("AUTHZ_API_TOKEN"),
			Timeout:          getDuration("AUTHZ_TIMEOUT", 10*time.Second),
			DisableGroupSync: getBool("DISABLE_CREATE_USER_IN_AUTH0"),
		},
		IgnoreJWTValidation: getBool("IGNORE_JWT_VALIDATION"),
		ExpirySweepInterval: getDuration("EXPIRY_SWEEP_INTERVAL", time.Hour),
	}

	brokerPartition, err := strconv.Atoi(os.Getenv("BROKER_PARTITION"))
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Msg("BROKER_PARTITION not set, using partition 0")
	}

	conf.KafkaConfig.BrokerPartition = brokerPartition

	return &conf
}

func (c *Config) IsProduction() bool {
	return c.Environment == productionEnvironment
}

// GroupSyncEnabled is false when explicitly disabled, or outside production
// when JWT validation is switched off.
func (c *Config) GroupSyncEnabled() bool {
	if c.AuthzConfig.DisableGroupSync {
		return false
	}
	if !c.IsProduction() && c.IgnoreJWTValidation {
		return false
	}
	return true
}

func getFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Str("key", key).Msg("invalid number, using default")
		return fallback
	}
	return v
}

func getBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Str("key", key).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
