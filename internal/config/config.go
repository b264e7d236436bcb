package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// StoreConfig carries connection settings for one logical store. The registry
// keeps two of these: the write-of-record store and the read mirror.
type StoreConfig struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
}

// Config holds registry configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	// Issuance parameters. Granularity is the maximum production period a
	// bundle may span; the capacity margin loosens the device output cap to
	// absorb metering noise.
	CertificateGranularityHours float64
	CertificateExpiryYears      int
	CapacityMargin              float64

	WriteDB StoreConfig
	ReadDB  StoreConfig
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "gc-registry"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		CertificateGranularityHours: getenvFloat("CERTIFICATE_GRANULARITY_HOURS", 1),
		CertificateExpiryYears:      getenvInt("CERTIFICATE_EXPIRY_YEARS", 2),
		CapacityMargin:              getenvFloat("CAPACITY_MARGIN", 1.1),

		WriteDB: loadStore("DATABASE_WRITE", "registry"),
		ReadDB:  loadStore("DATABASE_READ", "registry_read"),
	}

	return cfg
}

func loadStore(prefix, defaultName string) StoreConfig {
	return StoreConfig{
		Type:            getenv(prefix+"_TYPE", "postgres"),
		Host:            getenv(prefix+"_HOST", "localhost"),
		Port:            getenv(prefix+"_PORT", "5432"),
		Name:            getenv(prefix+"_NAME", defaultName),
		User:            getenv(prefix+"_USER", "postgres"),
		Password:        getenv(prefix+"_PASSWORD", ""),
		SSLMode:         getenv(prefix+"_SSLMODE", "disable"),
		MaxIdleConn:     getenvInt(prefix+"_MAX_IDLE_CONN", 2),
		MaxOpenConn:     getenvInt(prefix+"_MAX_OPEN_CONN", 10),
		ConnMaxLifetime: getenvInt(prefix+"_CONN_MAX_LIFETIME", 0),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
