package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName                string
	AppPort                string
	Env                    string
	APIKey                 string
	MongoURI               string
	MongoDBName            string
	MongoCollection        string
	GRPCPort               string
	MetricsPort            string
	TraceStdout            bool
	ShutdownTimeout        time.Duration
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
}

// SafeConfig is the loggable view of Config: no API key, no connection string.
type SafeConfig struct {
	AppName                string `json:"app_name"`
	AppPort                string `json:"app_port"`
	Env                    string `json:"env"`
	MongoDBName            string `json:"mongo_db_name"`
	MongoCollection        string `json:"mongo_collection"`
	GRPCPort               string `json:"grpc_port"`
	MetricsPort            string `json:"metrics_port"`
	TraceStdout            bool   `json:"trace_stdout"`
	ShutdownTimeoutMs      int64  `json:"shutdown_timeout_ms"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
}

// ErrMissingEnv is returned by Load when required variables are unset.
var ErrMissingEnv = errors.New("missing required environment variables")

var defaults = map[string]any{
	"APP_NAME":            "product-api",
	"APP_PORT":            "3000",
	"ENV":                 "development",
	"MONGO_DB_NAME":       "productdb",
	"MONGO_COLLECTION":    "products",
	"TRACE_STDOUT":        false,
	"SHUTDOWN_TIMEOUT_MS": 10000,
}

// Load reads an optional .env file, then the process environment.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	cfg := &Config{
		AppName:                v.GetString("APP_NAME"),
		AppPort:                v.GetString("APP_PORT"),
		Env:                    v.GetString("ENV"),
		APIKey:                 v.GetString("API_KEY"),
		MongoURI:               v.GetString("MONGO_URI"),
		MongoDBName:            v.GetString("MONGO_DB_NAME"),
		MongoCollection:        v.GetString("MONGO_COLLECTION"),
		GRPCPort:               v.GetString("GRPC_PORT"),
		MetricsPort:            v.GetString("METRICS_PORT"),
		TraceStdout:            v.GetBool("TRACE_STDOUT"),
		ShutdownTimeout:        durationMs(v, log, "SHUTDOWN_TIMEOUT_MS"),
		RemoteLogHttpURI:       v.GetString("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      v.GetString("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: v.GetString("REMOTE_PROFILING_HTTP_URI"),
	}

	if cfg.RemoteLogHttpURI == "" {
		log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
	}
	if cfg.RemoteTraceRpcURI == "" {
		log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
	}
	if cfg.RemoteProfilingHttpURI == "" {
		log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
	}

	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		log.Error("Missing required environment variables", slog.Any("missing", missing))
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	attrs := StructAttrs("data", cfg.ToSafeConfig())
	anyAttrs := make([]any, len(attrs))
	for i, a := range attrs {
		anyAttrs[i] = a
	}
	log.Info("Configuration loaded successfully", anyAttrs...)

	return cfg, nil
}

func durationMs(v *viper.Viper, log *slog.Logger, key string) time.Duration {
	ms := v.GetInt64(key)
	if ms <= 0 {
		fallback := defaults[key].(int)
		log.Warn("Invalid duration; using default",
			slog.String("key", key),
			slog.String("value", v.GetString(key)),
			slog.Int("default_ms", fallback),
		)
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// IsProduction reports whether in-flight requests should be drained on exit.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppName:                c.AppName,
		AppPort:                c.AppPort,
		Env:                    c.Env,
		MongoDBName:            c.MongoDBName,
		MongoCollection:        c.MongoCollection,
		GRPCPort:               c.GRPCPort,
		MetricsPort:            c.MetricsPort,
		TraceStdout:            c.TraceStdout,
		ShutdownTimeoutMs:      c.ShutdownTimeout.Milliseconds(),
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := prefix + "." + jsonKey(t.Field(i))
		f := v.Field(i)

		switch f.Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, f.String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, f.Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, f.Bool()))
		default:
			attrs = append(attrs, slog.Any(key, f.Interface()))
		}
	}
	return attrs
}

// jsonKey prefers the json tag and falls back to snake_case of the field name.
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}
