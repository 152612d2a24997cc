package sftpfs

import (
	"io"
	"os"

	CharmLog "github.com/charmbracelet/log"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/sftp"
)

// Root serves SFTP requests from a directory. Every client path is resolved
// inside root, symlinks included.
type Root struct {
	path   string
	logger *CharmLog.Logger
}

type lister []os.FileInfo

func NewRoot(path string, logger *CharmLog.Logger) *Root {
	return &Root{path: path, logger: logger}
}

func (root *Root) Handlers() sftp.Handlers {
	return sftp.Handlers{
		FileGet:  root,
		FilePut:  root,
		FileCmd:  root,
		FileList: root,
	}
}

func (root *Root) resolve(path string) (string, error) {
	return securejoin.SecureJoin(root.path, path)
}

func (root *Root) Fileread(r *sftp.Request) (io.ReaderAt, error) {
	fullPath, err := root.resolve(r.Filepath)
	if err != nil {
		return nil, err
	}
	root.logger.Info("Reading file", "path", fullPath)
	return os.Open(fullPath)
}

func (root *Root) Filewrite(r *sftp.Request) (io.WriterAt, error) {
	fullPath, err := root.resolve(r.Filepath)
	if err != nil {
		return nil, err
	}
	root.logger.Info("Writing file", "path", fullPath)
	return os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

func (root *Root) Filecmd(r *sftp.Request) error {
	fullPath, err := root.resolve(r.Filepath)
	if err != nil {
		return err
	}

	root.logger.Info("Running command", "method", r.Method, "path", fullPath)
	switch r.Method {
	case "Setstat":
		return nil //no-op
	case "Rename":
		target, err := root.resolve(r.Target)
		if err != nil {
			return err
		}
		return os.Rename(fullPath, target)
	case "Remove":
		return os.Remove(fullPath)
	case "Mkdir":
		return os.Mkdir(fullPath, 0755)
	case "Rmdir":
		return os.Remove(fullPath)
	default:
		return sftp.ErrSshFxOpUnsupported
	}
}

func (root *Root) Filelist(r *sftp.Request) (sftp.ListerAt, error) {
	fullPath, err := root.resolve(r.Filepath)
	if err != nil {
		return nil, err
	}

	switch r.Method {
	case "Stat", "Lstat":
		stat, err := os.Stat(fullPath)
		if err != nil {
			return nil, err
		}
		return lister([]os.FileInfo{stat}), nil
	}

	root.logger.Info("Listing directory", "path", fullPath)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var fileInfos []os.FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			root.logger.Warn("Error reading entry", "name", entry.Name(), "error", err)
			continue
		}
		fileInfos = append(fileInfos, info)
	}
	return lister(fileInfos), nil
}

func (l lister) ListAt(f []os.FileInfo, off int64) (int, error) {
	if off >= int64(len(l)) {
		return 0, io.EOF
	}

	n := copy(f, l[off:])
	if int(off)+n >= len(l) {
		return n, io.EOF
	}
	return n, nil
}
