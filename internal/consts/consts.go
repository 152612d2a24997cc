package consts

import (
	"time"

	CharmLog "github.com/charmbracelet/log"
)

const (
	SFTP_PORT   int = 2022
	STATUS_PORT int = 8080

	ECDSA_DEFAULT_SIZE int = 256
	RSA_DEFAULT_BITS   int = 2048
)

// Compiled-in host key locations, used when neither flags nor the host key
// file name one for a family.
const (
	RSA_PRIV_FILENAME     = "/etc/servr/ssh_host_rsa_key"
	DSS_PRIV_FILENAME     = "/etc/servr/ssh_host_dss_key"
	ECDSA_PRIV_FILENAME   = "/etc/servr/ssh_host_ecdsa_key"
	ED25519_PRIV_FILENAME = "/etc/servr/ssh_host_ed25519_key"
)

func LoggerOptions(prefix string) CharmLog.Options {
	return CharmLog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          prefix,
	}
}
