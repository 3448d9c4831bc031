package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	// env-required accepts a set-but-empty DATABASE_DSN, so check here.
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.PasswordHashCost < bcrypt.MinCost || c.Auth.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.password_hash_cost must be between %d and %d (got %d)",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.PasswordHashCost)
	}

	if c.Delivery.MaxConcurrentSends < 1 {
		return fmt.Errorf("delivery.max_concurrent_sends must be >= 1 (got %d)", c.Delivery.MaxConcurrentSends)
	}
	if c.Delivery.MaxBatchEvents < 1 {
		return fmt.Errorf("delivery.max_batch_events must be >= 1 (got %d)", c.Delivery.MaxBatchEvents)
	}

	if c.Mail.SMTPPort <= 0 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("mail.smtp_port must be a valid port (got %d)", c.Mail.SMTPPort)
	}

	return nil
}
