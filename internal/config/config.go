// Package config reads flightdeals settings from the environment, after
// loading a .env file from the working directory when one exists.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/flight-deals/internal/secret"
)

const (
	StoreSheet    = "sheet"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Store string

	SheetURL  string
	SheetAuth secret.Secret
	SheetName string

	DatabaseURL string
	SQLitePath  string

	FlightAPIURL string
	FlightAPIKey secret.Secret

	// search
	OriginCode      string
	Currency        string
	MaxStopovers    int
	NightsFrom      int
	NightsTo        int
	SearchStartDays int
	SearchEndDays   int

	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   secret.Secret
	MailSender     string
	MailRecipients []string

	SecretKey []byte
	LogLevel  slog.Level
}

// Load reads .env (if present) into the process environment without
// overriding variables that are already set, then calls FromEnv.
func Load() (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%s: %w", path, err)
}

// FromEnv reads the configuration and validates the store section. Settings
// only needed by the run command are checked by ValidateSearch and ValidateRun.
func FromEnv() (Config, error) {
	cfg := Config{
		Store:        strings.ToLower(getenv("DESTINATION_STORE", StoreSheet)),
		SheetURL:     os.Getenv("SHEET_URL"),
		SheetName:    getenv("SHEET_NAME", "prices"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getenv("SQLITE_PATH", "flightdeals.db"),
		FlightAPIURL: os.Getenv("FLIGHT_API_URL"),
		OriginCode:   strings.ToUpper(os.Getenv("ORIGIN_CODE")),
		Currency:     strings.ToUpper(getenv("CURRENCY", "BRL")),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		MailSender:   os.Getenv("MAIL_SENDER"),
	}
	cfg.MailRecipients = splitCSV(os.Getenv("MAIL_RECIPIENTS"))

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"MAX_STOPOVERS", 2, &cfg.MaxStopovers},
		{"NIGHTS_FROM", 7, &cfg.NightsFrom},
		{"NIGHTS_TO", 14, &cfg.NightsTo},
		{"SEARCH_START_DAYS", 1, &cfg.SearchStartDays},
		{"SEARCH_END_DAYS", 180, &cfg.SearchEndDays},
		{"SMTP_PORT", 587, &cfg.SMTPPort},
	}
	for _, f := range ints {
		v, err := intEnv(f.key, f.def)
		if err != nil {
			return Config{}, err
		}
		*f.dst = v
	}

	key, err := SecretKeyFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.SecretKey = key
	box, err := cfg.Box()
	if err != nil {
		return Config{}, err
	}

	secrets := []struct {
		key string
		dst *secret.Secret
	}{
		{"SHEET_AUTH", &cfg.SheetAuth},
		{"FLIGHT_API_KEY", &cfg.FlightAPIKey},
		{"SMTP_PASSWORD", &cfg.SMTPPassword},
	}
	for _, s := range secrets {
		v, err := secret.Resolve(box, os.Getenv(s.key))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = v
	}

	switch cfg.Store {
	case StoreSheet:
		if cfg.SheetURL == "" {
			return Config{}, fmt.Errorf("SHEET_URL is required when DESTINATION_STORE=sheet")
		}
		if err := checkURL("SHEET_URL", cfg.SheetURL); err != nil {
			return Config{}, err
		}
		if cfg.SheetName == "" {
			return Config{}, fmt.Errorf("SHEET_NAME must not be empty")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when DESTINATION_STORE=postgres")
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH must not be empty")
		}
	default:
		return Config{}, fmt.Errorf("invalid DESTINATION_STORE %q (want sheet, postgres or sqlite)", cfg.Store)
	}

	return cfg, nil
}

// ValidateSearch checks the settings needed to search for deals. It is all a
// dry run needs.
func (c Config) ValidateSearch() error {
	required := []struct{ key, v string }{
		{"FLIGHT_API_URL", c.FlightAPIURL},
		{"FLIGHT_API_KEY", c.FlightAPIKey.Reveal()},
		{"ORIGIN_CODE", c.OriginCode},
		{"CURRENCY", c.Currency},
	}
	if missing := missingKeys(required); len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if err := checkURL("FLIGHT_API_URL", c.FlightAPIURL); err != nil {
		return err
	}
	if c.MaxStopovers < 0 {
		return fmt.Errorf("MAX_STOPOVERS must not be negative")
	}
	if c.NightsFrom <= 0 || c.NightsTo < c.NightsFrom {
		return fmt.Errorf("NIGHTS_FROM/NIGHTS_TO must satisfy 0 < from <= to, got %d/%d", c.NightsFrom, c.NightsTo)
	}
	if c.SearchStartDays < 0 || c.SearchEndDays < c.SearchStartDays {
		return fmt.Errorf("SEARCH_START_DAYS/SEARCH_END_DAYS must satisfy 0 <= start <= end, got %d/%d", c.SearchStartDays, c.SearchEndDays)
	}
	return nil
}

// ValidateRun checks everything ValidateSearch does plus the mail settings.
func (c Config) ValidateRun() error {
	if err := c.ValidateSearch(); err != nil {
		return err
	}
	missing := missingKeys([]struct{ key, v string }{
		{"SMTP_HOST", c.SMTPHost},
		{"MAIL_SENDER", c.MailSender},
	})
	if len(c.MailRecipients) == 0 {
		missing = append(missing, "MAIL_RECIPIENTS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.SMTPPort)
	}
	return nil
}

func missingKeys(settings []struct{ key, v string }) []string {
	var missing []string
	for _, s := range settings {
		if s.v == "" {
			missing = append(missing, s.key)
		}
	}
	return missing
}

// SecretKeyFromEnv decodes FLIGHTDEALS_SECRET_KEY. It returns nil when the
// variable is unset.
func SecretKeyFromEnv() ([]byte, error) {
	raw := os.Getenv("FLIGHTDEALS_SECRET_KEY")
	if raw == "" {
		return nil, nil
	}
	key, err := decodeB64(raw)
	if err != nil {
		return nil, fmt.Errorf("FLIGHTDEALS_SECRET_KEY: %w", err)
	}
	if len(key) != secret.KeySize {
		return nil, fmt.Errorf("FLIGHTDEALS_SECRET_KEY must decode to %d bytes, got %d", secret.KeySize, len(key))
	}
	return key, nil
}

// Box returns the sealing box for the configured key, or nil when no key is
// set.
func (c Config) Box() (*secret.Box, error) {
	if len(c.SecretKey) == 0 {
		return nil, nil
	}
	return secret.NewBox(c.SecretKey)
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, v)
	}
	return n, nil
}

// decodeB64 accepts either the base64 value itself or a path to a file
// holding it, for mounted secrets.
func decodeB64(s string) ([]byte, error) {
	if b, err := os.ReadFile(s); err == nil {
		s = string(b)
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
