package config

import (
	"reflect"
	"strings"

	"revision-validator/core/browser"
	"revision-validator/core/database"
	"revision-validator/core/logger"
	"revision-validator/core/server"
	"revision-validator/core/storage"
	"revision-validator/feature/engineering"
	"revision-validator/feature/fse"
	"revision-validator/feature/partsdb"
	"revision-validator/feature/portal"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the optional control API.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for diagnostic snapshot uploads.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the parts database connection.
	Database database.Config `mapstructure:"database"`
	// Browser holds configuration for the automated browser.
	Browser browser.Config `mapstructure:"browser"`
	// Files locates the input table, the ledger and the snapshot directory.
	Files Files `mapstructure:"files"`
	// Run holds the unattended run settings.
	Run Run `mapstructure:"run"`
	// Portal holds the corporate portal navigation.
	Portal portal.Config `mapstructure:"portal"`
	// FSE holds the work order search page selectors.
	FSE fse.Config `mapstructure:"fse"`
	// Engineering holds the drawing repository selectors.
	Engineering engineering.Config `mapstructure:"engineering"`
	// Parts names the parts database lookup table.
	Parts partsdb.Config `mapstructure:"parts"`
}

// Files locates the workbooks a run reads and writes.
type Files struct {
	Input       string `mapstructure:"input" default:"lista.xlsx"`
	InputSheet  string `mapstructure:"input_sheet" default:"lista"`
	Ledger      string `mapstructure:"ledger" default:"Extracao_Dados_FSE.xlsx"`
	LedgerSheet string `mapstructure:"ledger_sheet" default:"Dados FSE"`
	ErrorsDir   string `mapstructure:"errors_dir" default:"erros"`
}

// Run controls how the decision point is answered.
type Run struct {
	// Decision is "ask", "reprocess" or "finish".
	Decision string `mapstructure:"decision" default:"ask"`
	// MaxReprocess caps automatic reprocess passes before finishing.
	MaxReprocess int `mapstructure:"max_reprocess" default:"1"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. DATABASE_HOST -> database.host)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
