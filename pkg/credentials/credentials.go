// Package credentials resolves the tracker password from the configured source.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/project"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

const serviceName = "srs-exporter"

// keyringGet is replaced in tests to simulate an unavailable keychain
var keyringGet = keyring.Get

// Account returns the keychain account for a connection. Passwords are
// stored per collection and user so one machine can hold several.
func Account(conn config.ConnectionConfig) string {
	if conn.Username == "" {
		return ""
	}
	collection := project.JoinURL(conn.Endpoint, strings.TrimRight(conn.Collection, "/"))
	return collection + "|" + conn.Username
}

// Resolve returns the password for conn according to its password source
func Resolve(conn config.ConnectionConfig) (string, error) {
	switch conn.PasswordSource {
	case "", config.PasswordSourceConfig:
		if conn.Password == "" {
			return "", workitem.NewConfigurationError("connection.password is empty", nil)
		}
		return conn.Password, nil
	case config.PasswordSourceEnv:
		if conn.Password != "" {
			return conn.Password, nil
		}
		if v := os.Getenv(config.EnvPassword); v != "" {
			return v, nil
		}
		return "", workitem.NewConfigurationError(fmt.Sprintf("environment variable %s is not set", config.EnvPassword), nil)
	case config.PasswordSourceKeyring:
		password, err := Load(conn)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", workitem.NewPermissionError(fmt.Sprintf("no password stored for %s", conn.Username), err)
		}
		if err != nil {
			return "", workitem.NewConfigurationError("failed to read password from the keychain", err)
		}
		return password, nil
	default:
		return "", workitem.NewConfigurationError(fmt.Sprintf("unknown password source '%s'", conn.PasswordSource), nil)
	}
}

// Load retrieves a stored password from the OS keychain
func Load(conn config.ConnectionConfig) (string, error) {
	account := Account(conn)
	if account == "" {
		return "", keyring.ErrNotFound
	}
	return keyringGet(serviceName, account)
}

// Store persists a password into the OS keychain
func Store(conn config.ConnectionConfig, password string) error {
	account := Account(conn)
	if account == "" {
		return keyring.ErrNotFound
	}
	if password == "" {
		return errors.New("password must not be empty")
	}
	return keyring.Set(serviceName, account, password)
}

// Delete removes a stored password from the OS keychain
func Delete(conn config.ConnectionConfig) error {
	account := Account(conn)
	if account == "" {
		return keyring.ErrNotFound
	}
	return keyring.Delete(serviceName, account)
}
