// Package config provides fextract's configuration.
//
// Values are resolved in order: struct-tag defaults, then an optional YAML
// file, then FEXTRACT_* environment variables. Command-line flags are applied
// on top by the CLI. The result is validated before use.
package config

// Config holds all fextract settings.
type Config struct {
	CSV    CSVConfig    `yaml:"csv"`
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Schema SchemaConfig `yaml:"schema"`
}

// CSVConfig holds CSV parser settings.
type CSVConfig struct {
	// Delimiter is the single-character field separator (default: ";")
	Delimiter string `yaml:"delimiter" env:"FEXTRACT_CSV_DELIMITER" default:";"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: warn)
	Level string `yaml:"level" env:"FEXTRACT_LOG_LEVEL" default:"warn"`

	// Format is text or json (default: text)
	Format string `yaml:"format" env:"FEXTRACT_LOG_FORMAT" default:"text"`
}

// StoreConfig holds SQLite store settings.
type StoreConfig struct {
	// Path is the database used by history when no path is given.
	Path string `yaml:"path" env:"FEXTRACT_STORE_PATH"`
}

// SchemaConfig holds record validation settings.
type SchemaConfig struct {
	// Path is a CUE file applied by extract when --schema is not given.
	Path string `yaml:"path" env:"FEXTRACT_SCHEMA_PATH"`
}

// DelimiterRune returns the CSV delimiter as a rune. Only meaningful after
// Validate has accepted the configuration.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.CSV.Delimiter {
		return r
	}
	return 0
}
