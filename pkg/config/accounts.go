package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAccountsFile = "users.json"
	DefaultUsername     = "UnknownUser"
	DefaultNotesPrefix  = "Recurrent"
)

// Criteria selects which Dailies get converted.
type Criteria struct {
	// NotesPrefix must open a Daily's notes, ignoring case. Defaults to
	// DefaultNotesPrefix.
	NotesPrefix string `json:"notes_prefix,omitempty" yaml:"notes_prefix,omitempty"`
}

// Prefix returns the configured notes prefix or the default.
func (c Criteria) Prefix() string {
	if c.NotesPrefix == "" {
		return DefaultNotesPrefix
	}
	return c.NotesPrefix
}

// Account is one Habitica account to process.
type Account struct {
	UserID   string   `json:"user_id" yaml:"user_id"`
	APIToken string   `json:"api_token" yaml:"api_token"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Criteria Criteria `json:"criteria" yaml:"criteria"`
}

// ConfigError means the accounts file could not be used. No account is
// processed when it occurs.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadAccounts reads the accounts file. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: errors.Wrap(err, "read accounts")}
	}
	accounts, err := ParseAccounts(data, filepath.Ext(path))
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return accounts, nil
}

// ParseAccounts decodes, defaults and validates an account list.
func ParseAccounts(data []byte, ext string) ([]Account, error) {
	var accounts []Account
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &accounts); err != nil {
			return nil, errors.Wrap(err, "decode yaml accounts")
		}
	default:
		if err := json.Unmarshal(data, &accounts); err != nil {
			return nil, errors.Wrap(err, "decode json accounts")
		}
	}

	for i := range accounts {
		a := &accounts[i]
		if a.Username == "" {
			a.Username = DefaultUsername
		}
		if a.Criteria.NotesPrefix == "" {
			a.Criteria.NotesPrefix = DefaultNotesPrefix
		}
		if _, err := uuid.Parse(a.UserID); err != nil {
			return nil, errors.WithMessagef(err, "account %d (%s): invalid user_id", i, a.Username)
		}
		if strings.TrimSpace(a.APIToken) == "" {
			return nil, errors.Errorf("account %d (%s): api_token is required", i, a.Username)
		}
	}
	return accounts, nil
}
