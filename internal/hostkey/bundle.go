package hostkey

import (
	"golang.org/x/crypto/ssh"
)

// Key is the transient result of reading one key file. It is consumed by
// Bundle.Take and must not be used afterwards.
type Key struct {
	Slot   Slot
	Signer ssh.Signer
}

// Bundle holds at most one loaded key per slot.
type Bundle struct {
	keys   map[Slot]ssh.Signer
	frozen bool
}

func NewBundle() *Bundle {
	return &Bundle{keys: make(map[Slot]ssh.Signer)}
}

// Take moves key into its slot if the slot is empty. When the slot is taken
// the first key wins: the new key is dropped, and a *DuplicateKeyError is
// returned only if fatalOnDuplicate is set. It reports whether key was stored.
func (b *Bundle) Take(key *Key, fatalOnDuplicate bool) (bool, error) {
	if b.frozen {
		return false, ErrBundleFrozen
	}

	signer := key.Signer
	key.Signer = nil
	if signer == nil {
		return false, nil
	}

	if _, ok := b.keys[key.Slot]; ok {
		if fatalOnDuplicate {
			return false, &DuplicateKeyError{Slot: key.Slot}
		}
		return false, nil
	}

	b.keys[key.Slot] = signer
	return true, nil
}

// Get returns the key stored in slot.
func (b *Bundle) Get(slot Slot) (ssh.Signer, bool) {
	signer, ok := b.keys[slot]
	return signer, ok
}

// Has reports whether slot holds a key.
func (b *Bundle) Has(slot Slot) bool {
	_, ok := b.keys[slot]
	return ok
}

func (b *Bundle) Len() int {
	return len(b.keys)
}

func (b *Bundle) freeze() {
	b.frozen = true
}
