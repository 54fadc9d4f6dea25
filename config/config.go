package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string `envconfig:"DB_URI" default:"mongodb://127.0.0.1:27017"`
	DatabaseName string `envconfig:"DB_NAME" default:"dinebuddies"`
	StoreDriver  string `envconfig:"STORE_DRIVER" default:"mongo"`
	BaseURL      string `envconfig:"BASE_URL"`
	Port         string `envconfig:"PORT" default:"8080"`
	Env          string `envconfig:"ENV" default:"production"`

	JWTSecret      string        `envconfig:"JWT_SECRET"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	SendgridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	EmailFrom      string `envconfig:"EMAIL_FROM" default:"no-reply@dinebuddies.app"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"dinebuddies.notifications"`

	OTLPEndpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CleanupSchedule string `envconfig:"CLEANUP_SCHEDULE" default:"0 4 * * *"`
}

// New reads the config from the environment and sets up the global logger.
// A malformed env var is returned as an error once the logger is in place.
func New() (*Config, error) {
	var c Config
	perr := envconfig.Process("", &c)

	//setup zap logger and replace default logger
	logger, err := setLogger(c.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	if perr != nil {
		return nil, fmt.Errorf("failed to process env config: %w", perr)
	}
	return &c, nil
}

// setLogger picks a zap logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		return zap.NewDevelopment()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: fmt.Sprintf("%s, %v", message, err)})
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}
