package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfigTemplate is the commented configuration file written by
// 'jababox init'. The %s placeholder receives a freshly generated JWT
// secret.
const sampleConfigTemplate = `# JabaBox Configuration File
#
# This file configures the JabaBox storage backend server.
# All options can be overridden with JABABOX_* environment variables,
# e.g. JABABOX_LOGGING_LEVEL=DEBUG or JABABOX_API_PORT=9090.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Output format: text or json
  format: text
  # Destination: stdout, stderr, or a file path
  output: stdout

# Maximum time to wait for graceful shutdown
shutdown_timeout: 30s

database:
  # Metadata database backend: sqlite (single-node) or postgres
  type: sqlite
  sqlite:
    path: /var/lib/jababox/jababox.db
  # postgres:
  #   host: localhost
  #   port: 5432
  #   user: jababox
  #   password: ""
  #   database: jababox
  #   sslmode: disable

storage:
  # Byte store backend: fs, s3, or memory
  type: fs
  fs:
    base_path: /var/lib/jababox/storage
  # s3:
  #   bucket: jababox-payloads
  #   region: us-east-1
  #   endpoint: ""
  #   key_prefix: ""
  #   force_path_style: false

compression:
  # Deflate level for compressed uploads (-2 to 9, 0 = library default)
  level: 0

metrics:
  # Prometheus metrics endpoint (opt-in)
  enabled: false
  port: 9090

api:
  port: 8080
  read_timeout: 30s
  write_timeout: 30s
  idle_timeout: 60s
  # Maximum single upload size (supports human-readable values)
  max_upload_bytes: 256Mi
  jwt:
    # HMAC signing key for JWT tokens, at least 32 characters.
    # Prefer setting JABABOX_API_SECRET in the environment for production.
    secret: "%s"
    access_token_duration: 15m
    refresh_token_duration: 168h

bootstrap:
  # Initial account created by 'jababox init'
  login: admin
  quota_gigabytes: 10
`

// InitConfig creates a sample configuration file at the default location.
//
// Returns the path of the created file. Fails if the file already exists,
// unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	content := fmt.Sprintf(sampleConfigTemplate, secret)

	// 0600: the file carries the JWT signing secret.
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateSecret returns a 64-character hex string (32 bytes of entropy).
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
