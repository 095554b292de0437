package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret            string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
		TokenExpiration      string `yaml:"token_expiration" env:"AUTH_TOKEN_EXPIRATION"`
		Issuer               string `yaml:"issuer" env:"AUTH_ISSUER"`
		ReviewerUsername     string `yaml:"reviewer_username" env:"AUTH_REVIEWER_USERNAME"`
		ReviewerDisplayName  string `yaml:"reviewer_display_name" env:"AUTH_REVIEWER_DISPLAY_NAME"`
		ReviewerPasswordHash string `yaml:"reviewer_password_hash" env:"AUTH_REVIEWER_PASSWORD_HASH"`
	} `yaml:"auth"`

	Registration struct {
		DataDir       string `yaml:"data_dir" env:"REGISTRATION_DATA_DIR"`
		UploadDir     string `yaml:"upload_dir" env:"REGISTRATION_UPLOAD_DIR"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"REGISTRATION_MAX_UPLOAD_SIZE"`
	} `yaml:"registration"`

	Invoice InvoiceConfig `yaml:"invoice"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// InvoiceConfig selects and parameterises the external invoice bridge.
// Mode "api" reads from a remote HTTP API, "mysql_ssh" from the legacy MySQL
// database behind the SSH boundary. Incomplete settings mean local fallback.
type InvoiceConfig struct {
	Mode string `yaml:"mode" env:"INVOICE_MODE"`

	API struct {
		BaseURL     string `yaml:"base_url" env:"INVOICE_API_BASE_URL"`
		BearerToken string `yaml:"bearer_token" env:"INVOICE_API_BEARER_TOKEN"`
	} `yaml:"api"`

	SSH struct {
		Host       string `yaml:"host" env:"INVOICE_SSH_HOST"`
		Port       int    `yaml:"port" env:"INVOICE_SSH_PORT"`
		User       string `yaml:"user" env:"INVOICE_SSH_USER"`
		KeyPath    string `yaml:"key_path" env:"INVOICE_SSH_KEY_PATH"`
		Passphrase string `yaml:"passphrase" env:"INVOICE_SSH_PASSPHRASE"`
	} `yaml:"ssh"`

	MySQL struct {
		Host     string `yaml:"host" env:"INVOICE_MYSQL_HOST"`
		Port     int    `yaml:"port" env:"INVOICE_MYSQL_PORT"`
		User     string `yaml:"user" env:"INVOICE_MYSQL_USER"`
		Password string `yaml:"password" env:"INVOICE_MYSQL_PASSWORD"`
		DBName   string `yaml:"dbname" env:"INVOICE_MYSQL_DBNAME"`
	} `yaml:"mysql"`

	// Legacy schema identifiers. Defaults match the primary snake_case
	// layout; the row mapper additionally tolerates the older PascalCase
	// scheme on reads.
	Schema struct {
		InvoiceTable       string `yaml:"invoice_table" env:"INVOICE_TABLE"`
		NumberColumn       string `yaml:"number_column" env:"INVOICE_NUMBER_COLUMN"`
		AmountColumn       string `yaml:"amount_column" env:"INVOICE_AMOUNT_COLUMN"`
		SubsidyColumn      string `yaml:"subsidy_column" env:"INVOICE_SUBSIDY_COLUMN"`
		PenaltyColumn      string `yaml:"penalty_column" env:"INVOICE_PENALTY_COLUMN"`
		NetColumn          string `yaml:"net_column" env:"INVOICE_NET_COLUMN"`
		UpdatedAtColumn    string `yaml:"updated_at_column" env:"INVOICE_UPDATED_AT_COLUMN"`
		CustomerIDColumn   string `yaml:"customer_id_column" env:"INVOICE_CUSTOMER_ID_COLUMN"`
		CustomerNameColumn string `yaml:"customer_name_column" env:"INVOICE_CUSTOMER_NAME_COLUMN"`

		OutstandingColumn string `yaml:"outstanding_column" env:"INVOICE_OUTSTANDING_COLUMN"`
		PaidColumn        string `yaml:"paid_column" env:"INVOICE_PAID_COLUMN"`

		DetailTable          string `yaml:"detail_table" env:"INVOICE_DETAIL_TABLE"`
		DetailJoinColumn     string `yaml:"detail_join_column" env:"INVOICE_DETAIL_JOIN_COLUMN"`
		InvoiceIDColumn      string `yaml:"invoice_id_column" env:"INVOICE_ID_COLUMN"`
		ExtendedFieldsColumn string `yaml:"extended_fields_column" env:"INVOICE_EXTENDED_FIELDS_COLUMN"`

		StudentTable           string `yaml:"student_table" env:"INVOICE_STUDENT_TABLE"`
		StudentIDColumn        string `yaml:"student_id_column" env:"INVOICE_STUDENT_ID_COLUMN"`
		StudentOutstandingCol  string `yaml:"student_outstanding_column" env:"INVOICE_STUDENT_OUTSTANDING_COLUMN"`
		OutstandingFunction    string `yaml:"outstanding_function" env:"INVOICE_OUTSTANDING_FUNCTION"`
		InvoiceStudentIDColumn string `yaml:"invoice_student_id_column" env:"INVOICE_STUDENT_REF_COLUMN"`
	} `yaml:"schema"`

	// CustomQuery, when set, replaces the generated amount SELECT. The
	// {customerId} placeholder is substituted (escaped) with CustomerID.
	CustomQuery string `yaml:"custom_query" env:"INVOICE_CUSTOM_QUERY"`
	CustomerID  string `yaml:"customer_id" env:"INVOICE_CUSTOMER_ID"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Config file is optional; env vars alone can carry a deployment.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	err := loadFromEnv(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Auth.TokenExpiration = "8h"
	config.Auth.Issuer = "tadikahub"
	config.Auth.ReviewerUsername = "admin"
	config.Auth.ReviewerDisplayName = "Centre Admin"

	config.Registration.DataDir = "data"
	config.Registration.UploadDir = "data/uploads"
	config.Registration.MaxUploadSize = 10 << 20

	config.Invoice.Mode = "api"
	config.Invoice.SSH.Port = 22
	config.Invoice.MySQL.Port = 3306

	s := &config.Invoice.Schema
	s.InvoiceTable = "invoices"
	s.NumberColumn = "invoice_number"
	s.AmountColumn = "amount"
	s.SubsidyColumn = "subsidy_amount"
	s.PenaltyColumn = "penalty_amount"
	s.NetColumn = "net_amount"
	s.UpdatedAtColumn = "updated_at"
	s.CustomerIDColumn = "customer_id"
	s.CustomerNameColumn = "customer_name"
	s.OutstandingColumn = "outstanding_amount"
	s.PaidColumn = "paid_amount"
	s.DetailTable = "invoice_details"
	s.DetailJoinColumn = "invoice_id"
	s.InvoiceIDColumn = "id"
	s.ExtendedFieldsColumn = "extended_fields"
	s.StudentTable = "students"
	s.StudentIDColumn = "id"
	s.StudentOutstandingCol = "outstanding_amount"
	s.OutstandingFunction = "fn_student_outstanding"
	s.InvoiceStudentIDColumn = "student_id"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig checks required settings
func validateConfig(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret is required")
	}

	if _, err := time.ParseDuration(config.Auth.TokenExpiration); err != nil {
		return fmt.Errorf("invalid token expiration format: %w", err)
	}

	if config.Registration.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	switch config.Invoice.Mode {
	case "api", "mysql_ssh":
	default:
		return fmt.Errorf("invalid invoice mode %q (want api or mysql_ssh)", config.Invoice.Mode)
	}

	return nil
}

// TokenExpiration returns the parsed access token lifetime.
func (c *Config) TokenExpiration() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenExpiration)
	if err != nil {
		return 8 * time.Hour
	}
	return d
}

// HasAPIConfig reports whether the HTTP provider is usable.
func (ic *InvoiceConfig) HasAPIConfig() bool {
	return ic.API.BaseURL != ""
}

// HasSSHConfig reports whether every parameter the tunneled MySQL provider
// needs is present.
func (ic *InvoiceConfig) HasSSHConfig() bool {
	return ic.SSH.Host != "" && ic.SSH.User != "" && ic.SSH.KeyPath != "" &&
		ic.MySQL.Host != "" && ic.MySQL.User != "" && ic.MySQL.DBName != ""
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
