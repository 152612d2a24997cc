package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings is the environment configuration of the SFTP server.
type Settings struct {
	SFTPRoot      string `envconfig:"SFTP_ROOT" required:"true"`
	SFTPPort      int    `envconfig:"SFTP_PORT" default:"2022"`
	StatusPort    int    `envconfig:"STATUS_PORT" default:"8080"`
	HostKeyConfig string `envconfig:"HOSTKEY_CONFIG"`
	User          string `envconfig:"SFTP_USER" default:"testuser"`
	Password      string `envconfig:"SFTP_PASSWORD" default:"testpass"`
}

// LoadSettings reads Settings from the environment and resolves SFTPRoot to
// an existing absolute directory.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	root, err := ResolveRoot(s.SFTPRoot)
	if err != nil {
		return Settings{}, err
	}
	s.SFTPRoot = root
	return s, nil
}

// ResolveRoot makes root absolute and checks that it is a directory.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", abs)
	}
	return abs, nil
}
