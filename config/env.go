package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultDatabaseDriver = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "kapee"
	defaultDBTimeout      = 5 * time.Second
	defaultRedisAddr      = "localhost:6379"
	defaultJWTSecret      = "change-me-in-production"
	defaultJWTTTL         = time.Hour
	defaultLockDriver     = "memory"
	defaultLockTTL        = 10 * time.Second
	defaultAppPort        = "5000"
	defaultAppEnv         = "local"
	defaultRateLimit      = 200
	defaultWorkers        = 4
	defaultLogRetention   = 7 * 24 * time.Hour
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json then .env once. Process environment variables
// override both.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":        defaultAppEnv,
		"APP_PORT":       defaultAppPort,
		"DB_DRIVER":      defaultDatabaseDriver,
		"MONGO_URI":      defaultMongoURI,
		"MONGO_DATABASE": defaultMongoDatabase,
		"DB_TIMEOUT":     defaultDBTimeout.String(),
		"JWT_SECRET":     defaultJWTSecret,
		"JWT_TTL":        defaultJWTTTL.String(),
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
		"LOCK_DRIVER":    defaultLockDriver,
		"LOCK_TTL":       defaultLockTTL.String(),
		"CORS_ORIGINS":   "",
		"RATE_LIMIT":     strconv.Itoa(defaultRateLimit),
		"WORKERS":        strconv.Itoa(defaultWorkers),
		"SLACK_WEBHOOK":  "",
		"LOG_MONGO":      "false",
		"LOG_RETENTION":  defaultLogRetention.String(),
		"ADMIN_EMAIL":    "",
		"ADMIN_PASSWORD": "",
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// DatabaseDriver is "mongo" or "memory". Unknown values fall back to mongo.
func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

// DBTimeout bounds every persistence call.
func DBTimeout() time.Duration {
	_ = Load()
	return Duration("DB_TIMEOUT", defaultDBTimeout)
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func JWTTTL() time.Duration {
	_ = Load()
	return Duration("JWT_TTL", defaultJWTTTL)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// LockDriver is "memory" (single replica) or "redis" (shared across replicas).
func LockDriver() string {
	_ = Load()

	driver := strings.ToLower(get("LOCK_DRIVER", defaultLockDriver))
	if driver != "redis" {
		return defaultLockDriver
	}
	return driver
}

func LockTTL() time.Duration {
	_ = Load()
	return Duration("LOCK_TTL", defaultLockTTL)
}

// CORSOrigins is a comma-separated allow list. Empty allows any origin.
func CORSOrigins() string {
	return Get("CORS_ORIGINS", "")
}

// RateLimit is the number of requests one client IP may make per minute.
func RateLimit() int {
	if n := Int("RATE_LIMIT", defaultRateLimit); n > 0 {
		return n
	}
	return defaultRateLimit
}

// Workers sizes the background notification pool.
func Workers() int {
	return Int("WORKERS", defaultWorkers)
}

// SlackWebhookURL receives new-order alerts. Empty disables them.
func SlackWebhookURL() string {
	return Get("SLACK_WEBHOOK", "")
}

// LogToMongo mirrors warnings and errors into the logs collection.
func LogToMongo() bool {
	v, err := strconv.ParseBool(Get("LOG_MONGO", "false"))
	return err == nil && v
}

func LogRetention() time.Duration {
	return Duration("LOG_RETENTION", defaultLogRetention)
}

func IsProduction() bool {
	switch AppEnv() {
	case "production", "prod":
		return true
	}
	return false
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := mergeDotEnv(envPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}
	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int reads key as an integer, returning fallback when unset or malformed.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Duration reads key as a time.Duration ("5s", "1h"). Bare integers are seconds.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
