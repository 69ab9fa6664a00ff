package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret       string
	JWTExpireHours  int
	JWTRefreshHours int

	FrontendURL string

	FirebaseServiceAccountPath string
	FirebaseProjectID          string

	StorageDriver          string // cloudinary or s3
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	S3Bucket               string
	S3Region               string
	S3Endpoint             string
	S3AccessKey            string
	S3SecretKey            string

	SentryDSN string

	ReportRateLimit       int // reports per user per hour
	VerificationRateLimit int // submissions per user per day
}

// fileConfig mirrors config.yaml. Values there are defaults that env vars override.
type fileConfig struct {
	Server struct {
		Port        string `yaml:"port"`
		Env         string `yaml:"env"`
		LogLevel    string `yaml:"log_level"`
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"server"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Auth struct {
		JWTExpireHours  int `yaml:"jwt_expire_hours"`
		JWTRefreshHours int `yaml:"jwt_refresh_hours"`
	} `yaml:"auth"`
	Storage struct {
		Driver       string `yaml:"driver"`
		UploadFolder string `yaml:"upload_folder"`
		S3Bucket     string `yaml:"s3_bucket"`
		S3Region     string `yaml:"s3_region"`
		S3Endpoint   string `yaml:"s3_endpoint"`
	} `yaml:"storage"`
	Limits struct {
		ReportsPerHour      int `yaml:"reports_per_hour"`
		VerificationsPerDay int `yaml:"verifications_per_day"`
	} `yaml:"limits"`
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Debug().Msg("No .env file found")
	}

	file, err := loadFile(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring config file")
		file = &fileConfig{}
	}

	return &Config{
		Port:     getEnv("PORT", orDefault(file.Server.Port, "8080")),
		AppEnv:   getEnv("APP_ENV", orDefault(file.Server.Env, "development")),
		LogLevel: getEnv("LOG_LEVEL", orDefault(file.Server.LogLevel, "info")),

		MongoURI: getEnv("MONGO_URI", orDefault(file.Mongo.URI, "mongodb://localhost:27017")),
		MongoDB:  getEnv("MONGO_DB", orDefault(file.Mongo.Database, "onthebell")),
		RedisURL: getEnv("REDIS_URL", file.Redis.URL),

		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		JWTExpireHours:  getEnvInt("JWT_EXPIRE_HOURS", orDefaultInt(file.Auth.JWTExpireHours, 24)),
		JWTRefreshHours: getEnvInt("JWT_REFRESH_HOURS", orDefaultInt(file.Auth.JWTRefreshHours, 24*7)),

		FrontendURL: getEnv("FRONTEND_URL", orDefault(file.Server.FrontendURL, "http://localhost:3000")),

		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),

		StorageDriver:          getEnv("STORAGE_DRIVER", orDefault(file.Storage.Driver, "cloudinary")),
		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", orDefault(file.Storage.UploadFolder, "onthebell")),
		S3Bucket:               getEnv("S3_BUCKET", file.Storage.S3Bucket),
		S3Region:               getEnv("S3_REGION", orDefault(file.Storage.S3Region, "us-east-1")),
		S3Endpoint:             getEnv("S3_ENDPOINT", file.Storage.S3Endpoint),
		S3AccessKey:            getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:            getEnv("S3_SECRET_KEY", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		ReportRateLimit:       getEnvInt("REPORT_RATE_LIMIT", orDefaultInt(file.Limits.ReportsPerHour, 20)),
		VerificationRateLimit: getEnvInt("VERIFICATION_RATE_LIMIT", orDefaultInt(file.Limits.VerificationsPerDay, 3)),
	}
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orDefaultInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}
