// Package credentials resolves connection passwords from external sources:
// a shell command whose stdout is the password, or the operating system
// keychain. Vault-backed and interactive resolution live with the caller.
package credentials

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// keyringService namespaces keychain entries; the account is the
// connection profile name.
const keyringService = "loom"

// Method selects how a connection's password is obtained.
type Method string

const (
	MethodPrompt   Method = "prompt"
	MethodCommand  Method = "command"
	MethodKeychain Method = "keychain"
	MethodVault    Method = "vault"
)

// Error reports a credential resolution failure.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credentials: %s: %v", e.Message, e.Err)
	}
	return "credentials: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// FromCommand runs a shell command and returns its stdout as the password,
// with trailing newline characters removed. A non-zero exit is an error
// carrying the command's stderr.
func FromCommand(command string) (string, error) {
	logrus.Debug("running password command")
	cmd := exec.Command("sh", "-c", command)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", &Error{Message: fmt.Sprintf(
				"password command failed (%s): %s", exitErr.ProcessState, exitErr.Stderr)}
		}
		return "", &Error{Message: "failed to run command", Err: err}
	}

	password := strings.TrimRight(string(out), "\r\n")
	return password, nil
}

// FromKeychain reads a connection's password from the OS keychain.
func FromKeychain(connectionName string) (string, error) {
	password, err := keyring.Get(keyringService, connectionName)
	if err != nil {
		return "", &Error{Message: "keychain get failed", Err: err}
	}
	return password, nil
}

// StoreInKeychain saves a connection's password to the OS keychain.
func StoreInKeychain(connectionName, password string) error {
	if err := keyring.Set(keyringService, connectionName, password); err != nil {
		return &Error{Message: "keychain store failed", Err: err}
	}
	return nil
}

// DeleteFromKeychain removes a connection's password from the OS keychain.
// A missing entry is logged and ignored.
func DeleteFromKeychain(connectionName string) error {
	if err := keyring.Delete(keyringService, connectionName); err != nil {
		logrus.WithError(err).Warn("keychain delete failed")
	}
	return nil
}
