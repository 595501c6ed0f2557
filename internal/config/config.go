// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file,
// a .env file and environment variables, in increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string. Empty selects the
	// in-memory project store.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// AdminKey is the shared admin secret. It is read once at startup and
	// never reloaded.
	AdminKey string `json:"admin_key"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	COSSecretID  string `json:"cos_secret_id"`
	COSSecretKey string `json:"cos_secret_key"`
	COSBucket    string `json:"cos_bucket"`
	COSRegion    string `json:"cos_region"`

	// UploadDir backs the local object store used when COS is not configured.
	UploadDir string `json:"upload_dir"`
	// PublicBaseURL prefixes URLs of locally stored objects.
	PublicBaseURL string `json:"public_base_url"`
	// MaxUploadBytes caps decoded image size.
	MaxUploadBytes int `json:"max_upload_bytes"`

	// PurgeInterval and DeletedRetention drive the soft-delete cleaner.
	PurgeInterval    time.Duration `json:"-"`
	DeletedRetention time.Duration `json:"-"`

	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.UploadDir, "u", "data/uploads", "directory for locally stored uploads")
	flag.StringVar(&options.PublicBaseURL, "b", "http://localhost:8080", "public base URL of this server")
	flag.IntVar(&options.MaxUploadBytes, "max-upload", 5<<20, "maximum decoded upload size in bytes")
	flag.DurationVar(&options.PurgeInterval, "purge-interval", time.Hour, "how often soft-deleted projects are purged")
	flag.DurationVar(&options.DeletedRetention, "retention", 30*24*time.Hour, "how long soft-deleted projects are kept")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	flag.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
}

// Parse parses the command-line flags, the config file and environment
// variables to set configuration values. A .env file in the working
// directory is loaded into the environment first when present. It returns
// a pointer to the Options struct containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("error while reading .env: %v", err)
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options, options.Config); err != nil {
		log.Fatal(err)
	}
	if err := applyEnv(options, os.Getenv); err != nil {
		log.Fatal(err)
	}

	return options
}

// loadFile overlays the JSON file at path onto o. A missing file is not
// an error.
func loadFile(o *Options, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// applyEnv overrides o with every non-empty variable getenv reports.
func applyEnv(o *Options, getenv func(string) string) error {
	strs := map[string]*string{
		"SERVER_ADDRESS":  &o.Port,
		"DATABASE_DSN":    &o.DatabaseDSN,
		"ADMIN_KEY":       &o.AdminKey,
		"LOG_LEVEL":       &o.LogLevel,
		"COS_SECRET_ID":   &o.COSSecretID,
		"COS_SECRET_KEY":  &o.COSSecretKey,
		"COS_BUCKET":      &o.COSBucket,
		"COS_REGION":      &o.COSRegion,
		"UPLOAD_DIR":      &o.UploadDir,
		"PUBLIC_BASE_URL": &o.PublicBaseURL,
		"TLS_CERT":        &o.TLSCert,
		"TLS_KEY":         &o.TLSKey,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		o.MaxUploadBytes = n
	}

	durations := map[string]*time.Duration{
		"PURGE_INTERVAL":    &o.PurgeInterval,
		"DELETED_RETENTION": &o.DeletedRetention,
	}
	for name, dst := range durations {
		if v := getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}
	return nil
}
