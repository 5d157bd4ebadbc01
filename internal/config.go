package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendDocStore = "docstore"
)

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Vault    VaultConfig       `yaml:"vault"`
	Storage  StorageConfig     `yaml:"storage"`
	DocStore DocStoreConfig    `yaml:"docstore"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.Backend == BackendDocStore {
		return c.DocStore.Validate()
	}
	return nil
}

// ApplyEnv overrides configuration values from environment variables.
// getenv is usually os.Getenv; empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.App.HTTP.Port = port
	}
	if v := getenv("VAULT_DATA_DIR"); v != "" {
		c.Vault.DataDir = v
	}
	if v := getenv("BACKUP_RETAIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BACKUP_RETAIN: %w", err)
		}
		c.Vault.Backup.Retain = n
	}
	if v := getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := getenv("DOCSTORE_DSN"); v != "" {
		c.DocStore.DSN = v
	}
	if v := getenv("DOCSTORE_COLLECTION"); v != "" {
		c.DocStore.Collection = v
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the data directory and the file names inside it.
type VaultConfig struct {
	DataDir    string       `yaml:"data_dir"`
	File       string       `yaml:"file"`
	ExportFile string       `yaml:"export_file"`
	Backup     BackupConfig `yaml:"backup"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.File, validation.Required, validation.By(relativePath)),
		validation.Field(&c.ExportFile, validation.Required, validation.By(relativePath)),
	); err != nil {
		return err
	}
	return c.Backup.Validate()
}

func relativePath(v any) error {
	s, _ := v.(string)
	if filepath.IsAbs(s) {
		return fmt.Errorf("must be relative to data_dir")
	}
	return nil
}

// BackupConfig controls backup snapshots.
// Retain is the number of snapshots kept; 0 keeps all of them.
type BackupConfig struct {
	Dir    string `yaml:"dir"`
	Retain int    `yaml:"retain"`
}

// Validate validates the backup configuration.
func (c *BackupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required, validation.By(relativePath)),
		validation.Field(&c.Retain, validation.Min(0)),
	)
}

// StorageConfig selects the storage strategy.
//
// Backend is one of:
//   - "file" (default): flat JSON file in the data directory.
//   - "docstore": SQLite-backed document collection.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendDocStore)),
	)
}

// DocStoreConfig holds the document store connection settings.
type DocStoreConfig struct {
	DSN        string `yaml:"dsn"`
	Collection string `yaml:"collection"`
}

// Validate validates the document store configuration.
func (c *DocStoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.Collection, validation.Required, validation.Match(collectionName)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Vault: VaultConfig{
			DataDir:    "./data",
			File:       "vault.json",
			ExportFile: "export.txt",
			Backup: BackupConfig{
				Dir:    "backups",
				Retain: 50,
			},
		},
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		DocStore: DocStoreConfig{
			DSN:        "./data/recvault.db",
			Collection: "records",
		},
	}
}
