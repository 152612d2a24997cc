package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"servr/cmd/sftp/internal/sftpfs"
	"servr/internal/common"
	"servr/internal/config"
	"servr/internal/consts"
	"servr/internal/hostkey"
	"servr/internal/status"

	CharmLog "github.com/charmbracelet/log"
	"github.com/pkg/sftp"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

var logger = CharmLog.NewWithOptions(os.Stderr, consts.LoggerOptions("SFTP Service 📁"))

var (
	hostKeyPaths  []string
	hostKeyConfig string
	port          int
	statusPort    int
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "servr-sftp",
	Short: "SFTP server with on-demand host key generation",
	Long: `servr-sftp serves SFTP_ROOT over SSH.

At startup every configured host key is loaded, or generated when its file
does not exist. The server refuses to start when no host key is usable.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(CharmLog.DebugLevel)
		}
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringArrayVarP(&hostKeyPaths, "hostkey", "r", nil,
		"host key file (repeatable, order: DSS, RSA, ECDSA, ED25519)")
	rootCmd.Flags().StringVar(&hostKeyConfig, "config", "", "host key YAML file (overrides HOSTKEY_CONFIG)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "SFTP listen port (overrides SFTP_PORT)")
	rootCmd.Flags().IntVar(&statusPort, "status-port", 0, "status HTTP port, -1 disables (overrides STATUS_PORT)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func run(cmd *cobra.Command) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("config") {
		settings.HostKeyConfig = hostKeyConfig
	}
	if cmd.Flags().Changed("port") {
		settings.SFTPPort = port
	}
	if cmd.Flags().Changed("status-port") {
		settings.StatusPort = statusPort
	}
	logger.Info("Using SFTP root", "path", settings.SFTPRoot)

	keys, err := loadHostKeys(settings)
	if err != nil {
		return err
	}

	sshConfig := &ssh.ServerConfig{
		PasswordCallback: common.Credentials{Username: settings.User, Password: settings.Password}.PasswordCallback(logger),
	}
	if err := keys.Configure(sshConfig); err != nil {
		return fmt.Errorf("configure host keys: %w", err)
	}

	if settings.StatusPort > 0 {
		go serveStatus(keys, settings.StatusPort)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", settings.SFTPPort))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", settings.SFTPPort, err)
	}
	defer listener.Close()
	logger.Info("SFTP server listening", "addr", listener.Addr(), "user", settings.User)

	root := sftpfs.NewRoot(settings.SFTPRoot, logger.WithPrefix("SFTP Service 📁 (fs)"))
	for {
		conn, err := listener.Accept()
		if err != nil {
			logger.Warn("Failed to accept connection", "error", err)
			continue
		}

		logger.Info("Accepted new connection", "remoteAddr", conn.RemoteAddr())
		go handleSFTPConnection(conn, sshConfig, root)
	}
}

// loadHostKeys finishes before any listener exists, so handlers only ever
// see the frozen result.
func loadHostKeys(settings config.Settings) (*hostkey.HostKeys, error) {
	file, err := config.LoadHostKeyFile(settings.HostKeyConfig)
	if err != nil {
		return nil, err
	}
	caps, err := file.Capabilities()
	if err != nil {
		return nil, err
	}
	sources, err := file.Sources(caps, hostKeyPaths)
	if err != nil {
		return nil, err
	}

	return hostkey.LoadAll(caps, sources, file.StrictDuplicates,
		hostkey.WithLogger(logger.WithPrefix("SFTP Service 📁 (hostkey)")),
		hostkey.WithGenerator(hostkey.FileGenerator{
			RSABits:          file.RSABits,
			DefaultECDSASize: caps.DefaultECDSASize(),
		}),
	)
}

func serveStatus(keys *hostkey.HostKeys, port int) {
	statusLogger := logger.WithPrefix("SFTP Service 📁 (status)")
	router := status.NewRouter(keys, statusLogger)

	statusLogger.Info(fmt.Sprintf("Listening on :%d", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		statusLogger.Error("Status server stopped", "error", err)
	}
}

func handleSFTPConnection(netConn net.Conn, config *ssh.ServerConfig, root *sftpfs.Root) {
	defer netConn.Close()

	sshConn, chnls, reqs, err := ssh.NewServerConn(netConn, config)
	if err != nil {
		logger.Error("SSH handshake failed", "error", err)
		return
	}
	logger.Info("New connection", "remoteAddr", sshConn.RemoteAddr(), "user", sshConn.User())
	defer sshConn.Close()

	go ssh.DiscardRequests(reqs)
	for newChannel := range chnls {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			logger.Error("Could not accept channel", "error", err)
			continue
		}

		go handleSFTPChannel(channel, requests, root)
	}
}

func handleSFTPChannel(channel ssh.Channel, requests <-chan *ssh.Request, root *sftpfs.Root) {
	defer channel.Close()

	for req := range requests {
		if req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp" {
			if req.WantReply {
				req.Reply(true, nil)
			}

			server := sftp.NewRequestServer(channel, root.Handlers())

			logger.Info("Session started")
			if err := server.Serve(); err != nil {
				logger.Debug("Session closed", "error", err)
			}
			logger.Info("Session ended")
			return
		}

		if req.WantReply {
			req.Reply(false, nil)
			logger.Warn("Unsupported request type", "type", req.Type)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Startup failed", "error", err)
	}
}
