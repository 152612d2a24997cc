package hostkey

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/crypto/ssh"
)

// Reader reads one key file and detects which slot it belongs to.
type Reader interface {
	ReadKey(path string) (*Key, error)
}

// FileReader parses OpenSSH and PEM private keys from disk.
type FileReader struct{}

func (FileReader) ReadKey(path string) (*Key, error) {
	keyBytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingKeyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read host key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse host key %s: %w", path, err)
	}

	slot, err := SlotForKeyType(signer.PublicKey().Type())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Key{Slot: slot, Signer: signer}, nil
}

// SlotForKeyType maps an SSH public key type to the bundle slot it fills.
func SlotForKeyType(keyType string) (Slot, error) {
	switch keyType {
	case ssh.KeyAlgoRSA:
		return Slot{Family: FamilyRSA}, nil
	case ssh.KeyAlgoDSA:
		return Slot{Family: FamilyDSS}, nil
	case ssh.KeyAlgoECDSA256:
		return Slot{Family: FamilyECDSA, Size: ECDSA256}, nil
	case ssh.KeyAlgoECDSA384:
		return Slot{Family: FamilyECDSA, Size: ECDSA384}, nil
	case ssh.KeyAlgoECDSA521:
		return Slot{Family: FamilyECDSA, Size: ECDSA521}, nil
	case ssh.KeyAlgoED25519:
		return Slot{Family: FamilyEd25519}, nil
	case ssh.KeyAlgoSKECDSA256:
		return Slot{Family: FamilySKECDSA}, nil
	case ssh.KeyAlgoSKED25519:
		return Slot{Family: FamilySKEd25519}, nil
	}
	return Slot{}, fmt.Errorf("key type %q: %w", keyType, ErrUnsupportedFamily)
}
