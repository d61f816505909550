package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config holds the application settings beyond the common
// cfg.Registerable and cfg.Validatable concerns.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	ClaudeAPIKey          string
	ClaudeModel           string
	OracleTimeoutSeconds  int
	DatabaseURL           string
	ResendAPIKey          string
	AlertSender           string
	AlertRecipient        string
	SMTPHost              string
	SMTPPort              int
	SMTPPassword          string
	UploadDir             string
	APIToken              string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for accessing the Claude LLM provider")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.IntVar(&c.OracleTimeoutSeconds, "oracle-timeout-seconds", 30, "upper bound on a single classification call (1..300)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.ResendAPIKey, "resend-api-key", "", "Resend API key for alert email (preferred channel)")
	fs.StringVar(&c.AlertSender, "alert-sender", "", "From address on alert email")
	fs.StringVar(&c.AlertRecipient, "alert-recipient", "", "To address for alert email")
	fs.StringVar(&c.SMTPHost, "smtp-host", "", "SMTP server hostname for alert email (fallback channel)")
	fs.IntVar(&c.SMTPPort, "smtp-port", 587, "SMTP server port (1..65535)")
	fs.StringVar(&c.SMTPPassword, "smtp-password", "", "SMTP password for the sender account")
	fs.StringVar(&c.UploadDir, "upload-dir", "uploads", "directory holding defect image uploads")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token for the ingest endpoint (empty = no auth)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Claude access is required for classification
	if c.ClaudeAPIKey == "" {
		errs = append(errs, errors.New("CLAUDE_API_KEY is required"))
	}
	if c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required"))
	}

	if c.OracleTimeoutSeconds <= 0 || c.OracleTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid ORACLE_TIMEOUT_SECONDS %d (must be 1..300)", c.OracleTimeoutSeconds))
	}

	if c.UploadDir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR is required"))
	}

	// Email channels are optional, but a configured channel must be
	// addressable. Resend wins over SMTP when both are set.
	if c.ResendAPIKey != "" || c.SMTPHost != "" {
		if c.AlertSender == "" {
			errs = append(errs, errors.New("ALERT_SENDER is required when an email channel is configured"))
		}
		if c.AlertRecipient == "" {
			errs = append(errs, errors.New("ALERT_RECIPIENT is required when an email channel is configured"))
		}
	}
	if c.SMTPHost != "" {
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d (must be 1..65535)", c.SMTPPort))
		}
		if c.SMTPPassword == "" {
			errs = append(errs, errors.New("SMTP_PASSWORD is required when SMTP_HOST is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
