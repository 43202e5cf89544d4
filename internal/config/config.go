package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// defaultRequestLogStoplist names api.FrontendProxyType.
var defaultRequestLogStoplist = []string{"api.FrontendProxyHandler"}

type Config struct {
	APIPort            int `validate:"min=1,max=65535"`
	CORSAllowedOrigins []string
	FrontendProxyURL   string `validate:"omitempty,url"`
	RequestLogStoplist []string

	// Footer / diagnostics metadata
	H2ConsoleEnabled  bool
	ShowSwaggerUILink bool
	StartQuarter      string
	EndQuarter        string
	SourceRepo        string `validate:"omitempty,url"`
	CommitMessage     string
	CommitID          string
	CommitURL         string `validate:"omitempty,url"`

	// Deploy announcement queue
	DeployAnnounceEnabled bool
	RedisAddr             string
	RedisPassword         string
	RedisDB               int    `validate:"min=0"`
	TargetEndpoint        string `validate:"omitempty,url"`
	RetryCount            int    `validate:"min=0"`
	WorkerConcurrency     int    `validate:"min=1"`
	QueueName             string `validate:"required"`
	RequestTimeout        time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, seeds variables that are not already set.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		APIPort:            getEnvInt("API_PORT", 8080),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		FrontendProxyURL:   getEnv("FRONTEND_PROXY_URL", ""),
		RequestLogStoplist: getEnvList("REQUEST_LOG_STOPLIST", defaultRequestLogStoplist),

		H2ConsoleEnabled:  getEnvBool("H2_CONSOLE_ENABLED", false),
		ShowSwaggerUILink: getEnvBool("SHOW_SWAGGER_UI_LINK", false),
		StartQuarter:      getEnv("START_QTR", ""),
		EndQuarter:        getEnv("END_QTR", ""),
		SourceRepo:        getEnv("SOURCE_REPO", ""),
		CommitMessage:     getEnv("GIT_COMMIT_MESSAGE", ""),
		CommitID:          getEnv("GIT_COMMIT_ID", ""),
		CommitURL:         getEnv("GIT_COMMIT_URL", ""),

		DeployAnnounceEnabled: getEnvBool("DEPLOY_ANNOUNCE_ENABLED", false),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		TargetEndpoint:        getEnv("TARGET_ENDPOINT", ""),
		RetryCount:            getEnvInt("RETRY_COUNT", 3),
		WorkerConcurrency:     getEnvInt("WORKER_CONCURRENCY", 10),
		QueueName:             getEnv("QUEUE_NAME", "default"),
		RequestTimeout:        getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("yyyyq", func(fl validator.FieldLevel) bool {
		return isQuarter(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Validate checks field formats.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// Warnings reports footer metadata that looks wrong. The values are still
// served as configured.
func (c *Config) Warnings() []string {
	var warnings []string
	quarters := []struct {
		env, val string
	}{
		{"START_QTR", c.StartQuarter},
		{"END_QTR", c.EndQuarter},
	}
	for _, q := range quarters {
		if err := validate.Var(q.val, "omitempty,yyyyq"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %q is not a YYYYQ quarter", q.env, q.val))
		}
	}

	if isQuarter(c.StartQuarter) && isQuarter(c.EndQuarter) && c.StartQuarter > c.EndQuarter {
		warnings = append(warnings, fmt.Sprintf("START_QTR %s is after END_QTR %s", c.StartQuarter, c.EndQuarter))
	}

	return warnings
}

// isQuarter reports whether s is a YYYYQ term code (quarter 1-4).
func isQuarter(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return s[4] >= '1' && s[4] <= '4'
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated variable. Unset uses defaultVal; set
// but blank yields an empty list.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), defaultVal...)
	}

	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
