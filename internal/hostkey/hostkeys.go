// Package hostkey loads, generates and resolves the server's SSH host keys.
//
// LoadAll runs once at startup, before any connection is accepted. Its result
// is immutable and may be shared with connection handlers.
package hostkey

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Source is one configured key file. Size is only meaningful for ECDSA and
// may be zero to accept whatever curve the file holds.
type Source struct {
	Family Family
	Size   int
	Path   string
}

// HostKeys is the resolved, frozen outcome of startup key loading.
type HostKeys struct {
	snapshot *Snapshot
	bundle   *Bundle
}

// LoadAll loads every source in order, resolves algorithm enablement and
// freezes the result. Sources whose family is not in caps are skipped. The
// returned error is always fatal for the server.
func LoadAll(caps Capabilities, sources []Source, fatalOnDuplicate bool, opts ...LoaderOption) (*HostKeys, error) {
	bundle := NewBundle()
	loader := NewLoader(bundle, opts...)

	for _, src := range sources {
		if !caps.Has(src.Family) {
			loader.logger.Debug("Skipping hostkey for disabled family", "family", src.Family, "path", src.Path)
			continue
		}
		if err := loader.LoadOrGenerate(src.Family, src.Size, src.Path, fatalOnDuplicate); err != nil {
			return nil, err
		}
	}

	snapshot, err := Resolve(caps, bundle)
	if err != nil {
		return nil, err
	}
	bundle.freeze()

	loader.logger.Info("Hostkeys resolved", "keys", bundle.Len(), "algorithms", snapshot.Algorithms())
	return &HostKeys{snapshot: snapshot, bundle: bundle}, nil
}

func (h *HostKeys) Snapshot() *Snapshot {
	return h.snapshot
}

// Signers returns one signer per loaded slot that has usable algorithms,
// restricted to exactly those algorithms.
func (h *HostKeys) Signers() ([]ssh.Signer, error) {
	var signers []ssh.Signer
	seen := make(map[Slot]bool)

	for _, entry := range h.snapshot.Entries() {
		if seen[entry.Slot] {
			continue
		}
		seen[entry.Slot] = true

		signer, ok := h.bundle.Get(entry.Slot)
		if !ok {
			continue
		}
		algorithms := h.snapshot.SlotAlgorithms(entry.Slot)
		if len(algorithms) == 0 {
			continue
		}

		algoSigner, ok := signer.(ssh.AlgorithmSigner)
		if !ok {
			return nil, fmt.Errorf("%s key cannot select signature algorithms", entry.Slot)
		}
		restricted, err := ssh.NewSignerWithAlgorithms(algoSigner, algorithms)
		if err != nil {
			return nil, fmt.Errorf("%s key: %w", entry.Slot, err)
		}
		signers = append(signers, restricted)
	}
	return signers, nil
}

// Configure adds the usable host keys to config.
func (h *HostKeys) Configure(config *ssh.ServerConfig) error {
	signers, err := h.Signers()
	if err != nil {
		return err
	}
	for _, signer := range signers {
		config.AddHostKey(signer)
	}
	return nil
}

// Fingerprint returns the SHA256 fingerprint of the key in slot, if loaded.
func (h *HostKeys) Fingerprint(slot Slot) (string, bool) {
	signer, ok := h.bundle.Get(slot)
	if !ok {
		return "", false
	}
	return ssh.FingerprintSHA256(signer.PublicKey()), true
}
