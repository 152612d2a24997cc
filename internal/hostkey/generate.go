package hostkey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

const DefaultRSABits = 2048

// Generator creates a new key file for family at path. A zero size means the
// family default.
type Generator interface {
	Generate(family Family, size int, path string, writePublic bool) error
}

// FileGenerator writes OpenSSH-format private keys to disk.
type FileGenerator struct {
	RSABits          int
	DefaultECDSASize int
}

func (g FileGenerator) Generate(family Family, size int, path string, writePublic bool) error {
	private, public, err := g.newKey(family, size)
	if err != nil {
		return err
	}

	block, err := ssh.MarshalPrivateKey(private, "")
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	// O_EXCL so an existing file is never replaced.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create private key: %w", err)
	}
	if err := pem.Encode(file, block); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("write private key: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("write private key: %w", err)
	}

	if !writePublic {
		return nil
	}

	sshPub, err := ssh.NewPublicKey(public)
	if err != nil {
		return fmt.Errorf("create ssh public key: %w", err)
	}
	if err := os.WriteFile(path+".pub", ssh.MarshalAuthorizedKey(sshPub), 0644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

func (g FileGenerator) newKey(family Family, size int) (crypto.PrivateKey, crypto.PublicKey, error) {
	switch family {
	case FamilyRSA:
		bits := size
		if bits == 0 {
			bits = g.RSABits
		}
		if bits == 0 {
			bits = DefaultRSABits
		}
		key, err := rsa.GenerateKey(rand.Reader, bits)
		if err != nil {
			return nil, nil, fmt.Errorf("generate rsa key: %w", err)
		}
		return key, key.Public(), nil

	case FamilyECDSA:
		if size == 0 {
			size = g.DefaultECDSASize
		}
		curve, err := curveForSize(size)
		if err != nil {
			return nil, nil, err
		}
		key, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("generate ecdsa key: %w", err)
		}
		return key, key.Public(), nil

	case FamilyEd25519:
		public, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("generate ed25519 key: %w", err)
		}
		return private, public, nil
	}
	return nil, nil, fmt.Errorf("generate %s key: %w", family, ErrUnsupportedFamily)
}

func curveForSize(size int) (elliptic.Curve, error) {
	switch size {
	case ECDSA256:
		return elliptic.P256(), nil
	case ECDSA384:
		return elliptic.P384(), nil
	case ECDSA521:
		return elliptic.P521(), nil
	}
	return nil, fmt.Errorf("ecdsa size %d: %w", size, ErrUnsupportedFamily)
}
