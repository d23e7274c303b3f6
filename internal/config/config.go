package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Identifier string `yaml:"identifier" json:"identifier"`
	Collection string `yaml:"collection" json:"collection"`
	Mediatype  string `yaml:"mediatype" json:"mediatype"`
	// MediatypeExplicit is set when the mediatype came from a flag or env
	// var rather than the built-in default. An explicit mediatype is kept
	// as-is for Docs exports instead of being refined to "texts".
	MediatypeExplicit bool              `yaml:"-" json:"-"`
	Publisher         string            `yaml:"publisher" json:"publisher"`
	Dest              string            `yaml:"dest" json:"dest"`
	Flat              bool              `yaml:"flat" json:"flat"`
	DryRun            bool              `yaml:"dry_run" json:"dry_run"`
	Jobs              int               `yaml:"jobs" json:"jobs"`
	LogLevel          string            `yaml:"log_level" json:"log_level"`
	LogFormat         string            `yaml:"log_format" json:"log_format"`
	HistoryFile       string            `yaml:"history_file" json:"history_file"`
	Metadata          map[string]string `yaml:"metadata" json:"metadata"`

	GoogleAPIKey         string `yaml:"google_api_key" json:"google_api_key"`
	GoogleServiceAccount string `yaml:"google_service_account" json:"google_service_account"`
	IAAccessKey          string `yaml:"ia_access_key" json:"ia_access_key"`
	IASecretKey          string `yaml:"ia_secret_key" json:"ia_secret_key"`
}

func DefaultConfig() *Config {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 4
	}

	homeDir, _ := os.UserHomeDir()
	historyDir := filepath.Join(homeDir, ".iadrive")

	return &Config{
		Collection:  "opensource",
		Mediatype:   "data",
		Publisher:   "IAdrive",
		Dest:        "downloads",
		Flat:        false,
		DryRun:      false,
		Jobs:        jobs,
		LogLevel:    "info",
		LogFormat:   "text",
		HistoryFile: filepath.Join(historyDir, "history.json"),
		Metadata:    map[string]string{},
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv layers environment variables over the current values. Env wins
// over file values; command-line flags are applied after this and win over
// both.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("IADRIVE_DEFAULT_COLLECTION"); v != "" {
		c.Collection = v
	}
	if v := os.Getenv("IADRIVE_DEFAULT_MEDIATYPE"); v != "" {
		c.Mediatype = v
		c.MediatypeExplicit = true
	}
	if v := os.Getenv("IADRIVE_DEFAULT_PUBLISHER"); v != "" {
		c.Publisher = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.GoogleAPIKey = v
	}
	if v := os.Getenv("GOOGLE_SERVICE_ACCOUNT"); v != "" {
		c.GoogleServiceAccount = v
	}
	if v := os.Getenv("IA_ACCESS_KEY"); v != "" {
		c.IAAccessKey = v
	}
	if v := os.Getenv("IA_SECRET_KEY"); v != "" {
		c.IASecretKey = v
	}

	if c.IAAccessKey == "" || c.IASecretKey == "" {
		if access, secret := loadIACredentialFile(); access != "" && secret != "" {
			c.IAAccessKey = access
			c.IASecretKey = secret
		}
	}
}

// loadIACredentialFile reads S3-like keys from the ia command-line tool's
// config file, so credentials configured once with `ia configure` work here
// too. Checked locations follow the ia tool: $IA_CONFIG_FILE, then
// ~/.config/ia.ini, then ~/.ia.
func loadIACredentialFile() (string, string) {
	var candidates []string
	if p := os.Getenv("IA_CONFIG_FILE"); p != "" {
		candidates = append(candidates, p)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(homeDir, ".config", "ia.ini"),
			filepath.Join(homeDir, ".ia"),
		)
	}

	for _, path := range candidates {
		f, err := ini.Load(path)
		if err != nil {
			continue
		}
		s3 := f.Section("s3")
		access := s3.Key("access").String()
		secret := s3.Key("secret").String()
		if access != "" && secret != "" {
			return access, secret
		}
	}
	return "", ""
}

// Validate checks credential requirements and fills empty fields with their
// defaults. Google credentials are not checked here: Docs/Sheets/Slides
// exports work without one, so the pipeline enforces that requirement only
// when a run actually needs the Drive API.
func (c *Config) Validate() error {
	if !c.DryRun {
		if c.IAAccessKey == "" || c.IASecretKey == "" {
			return &ValidationError{Field: "ia_access_key", Message: "IA_ACCESS_KEY and IA_SECRET_KEY are required unless --dry-run is set"}
		}
	}
	if c.Jobs < 1 {
		c.Jobs = 1
	}

	if c.Dest == "" {
		c.Dest = "downloads"
	}
	if c.Collection == "" {
		c.Collection = "opensource"
	}
	if c.Mediatype == "" {
		c.Mediatype = "data"
	}
	if c.Publisher == "" {
		c.Publisher = "IAdrive"
	}
	if c.HistoryFile == "" {
		homeDir, _ := os.UserHomeDir()
		c.HistoryFile = filepath.Join(homeDir, ".iadrive", "history.json")
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
