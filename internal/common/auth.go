package common

import (
	"crypto/subtle"
	"fmt"

	CharmLog "github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"
)

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate(username string, password []byte) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare(password, []byte(c.Password)) == 1
	if !userOK || !passOK {
		return fmt.Errorf("invalid credentials for %q", username)
	}
	return nil
}

// PasswordCallback adapts Validate to ssh.ServerConfig.
func (c Credentials) PasswordCallback(logger *CharmLog.Logger) func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
	return func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
		if err := c.Validate(conn.User(), password); err != nil {
			logger.Warn("Authentication failed", "user", conn.User(), "remoteAddr", conn.RemoteAddr())
			return nil, err
		}
		return &ssh.Permissions{
			Extensions: map[string]string{"user": conn.User()},
		}, nil
	}
}
