package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultMongoURI         = "mongodb://localhost:27017"
	defaultMongoDB          = "enventory"
	defaultRedisAddr        = "localhost:6379"
	defaultSessionSecret    = "change-me-in-production"
	defaultAppPort          = "5000"
	defaultAppEnv           = "local"
	defaultLowStockLevel    = "5"
	defaultAllowedOrigins   = "http://localhost:3000"
	defaultStorageDisk      = "local"
	defaultStorageLocalRoot = "storage"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once and merges them over the defaults.
// Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":            defaultMongoURI,
		"MONGO_DB":             defaultMongoDB,
		"MONGO_TRANSACTIONS":   "false",
		"MONGO_LOG_COLLECTION": "",
		"REDIS_ADDR":           defaultRedisAddr,
		"REDIS_PASSWORD":       "",
		"SESSION_SECRET":       defaultSessionSecret,
		"APP_PORT":             defaultAppPort,
		"APP_ENV":              defaultAppEnv,
		"LOW_STOCK_LEVEL":      defaultLowStockLevel,
		"ALLOWED_ORIGINS":      defaultAllowedOrigins,
		"STORAGE_DISK":         defaultStorageDisk,
		"STORAGE_LOCAL_ROOT":   defaultStorageLocalRoot,
	}
}

// ── Application ──────────────────────────────────────────────────────────────

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// SessionSecret signs bearer tokens. Sessions themselves are opaque random
// IDs stored in Redis and need no signing.
func SessionSecret() string {
	_ = Load()
	return get("SESSION_SECRET", defaultSessionSecret)
}

// AllowedOrigins returns the comma-separated CORS origin allow-list.
func AllowedOrigins() []string {
	_ = Load()
	raw := get("ALLOWED_ORIGINS", defaultAllowedOrigins)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LowStockLevel is the stock threshold at or below which an alert job is
// queued after a placement.
func LowStockLevel() int {
	_ = Load()
	n, err := strconv.Atoi(get("LOW_STOCK_LEVEL", defaultLowStockLevel))
	if err != nil || n < 0 {
		return 5
	}
	return n
}

// ── MongoDB ──────────────────────────────────────────────────────────────────

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDB() string {
	_ = Load()
	return get("MONGO_DB", defaultMongoDB)
}

// MongoTransactions reports whether multi-document transactions are enabled.
// Requires a replica set deployment.
func MongoTransactions() bool {
	_ = Load()
	return strings.EqualFold(get("MONGO_TRANSACTIONS", "false"), "true")
}

// MongoLogCollection names the collection the async log handler writes to.
// Empty disables Mongo log shipping.
func MongoLogCollection() string {
	_ = Load()
	return get("MONGO_LOG_COLLECTION", "")
}

// ── Redis ────────────────────────────────────────────────────────────────────

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string {
	_ = Load()
	return get("STORAGE_DISK", defaultStorageDisk)
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", defaultStorageLocalRoot)
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── File loading ─────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
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
		s, ok := val.(string)
		if !ok {
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

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	// Process environment wins over .env and app.json.
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
