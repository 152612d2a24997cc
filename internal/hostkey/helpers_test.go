package hostkey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	CharmLog "github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"
)

var testRSAKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

func newTestKey(t *testing.T, slot Slot) crypto.PrivateKey {
	t.Helper()
	switch slot.Family {
	case FamilyRSA:
		return testRSAKey()
	case FamilyEd25519:
		_, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("generate ed25519: %v", err)
		}
		return private
	case FamilyECDSA:
		curves := map[int]elliptic.Curve{
			ECDSA256: elliptic.P256(),
			ECDSA384: elliptic.P384(),
			ECDSA521: elliptic.P521(),
		}
		key, err := ecdsa.GenerateKey(curves[slot.Size], rand.Reader)
		if err != nil {
			t.Fatalf("generate ecdsa: %v", err)
		}
		return key
	}
	t.Fatalf("no test key for %s", slot)
	return nil
}

// writeTestKey writes a private key for slot into dir and returns its path.
func writeTestKey(t *testing.T, dir, name string, slot Slot) string {
	t.Helper()
	block, err := ssh.MarshalPrivateKey(newTestKey(t, slot), "")
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func testSigner(t *testing.T, slot Slot) ssh.Signer {
	t.Helper()
	signer, err := ssh.NewSignerFromKey(newTestKey(t, slot))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}

func testLogger() *CharmLog.Logger {
	return CharmLog.New(io.Discard)
}

type generateCall struct {
	Family      Family
	Size        int
	Path        string
	WritePublic bool
}

// fakeGenerator records calls and either fails or delegates to a real
// FileGenerator.
type fakeGenerator struct {
	calls []generateCall
	err   error
	noop  bool
}

func (g *fakeGenerator) Generate(family Family, size int, path string, writePublic bool) error {
	g.calls = append(g.calls, generateCall{Family: family, Size: size, Path: path, WritePublic: writePublic})
	if g.err != nil {
		return g.err
	}
	if g.noop {
		return nil
	}
	return FileGenerator{RSABits: 2048, DefaultECDSASize: ECDSA256}.Generate(family, size, path, writePublic)
}

// countingReader wraps FileReader and counts reads.
type countingReader struct {
	reads int
}

func (r *countingReader) ReadKey(path string) (*Key, error) {
	r.reads++
	return FileReader{}.ReadKey(path)
}

var errBoom = errors.New("boom")

func mustCapabilities(t *testing.T, families []Family, defaultSize int) Capabilities {
	t.Helper()
	caps, err := NewCapabilities(families, defaultSize)
	if err != nil {
		t.Fatalf("NewCapabilities: %v", err)
	}
	return caps
}
