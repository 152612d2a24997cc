package hostkey

// Resolve derives the final usable flag of every algorithm in caps from the
// keys held in bundle, and fails with ErrNoHostKeys when no key was loaded.
//
// ECDSA advertises a single size when nothing was loaded: the default size
// stays enabled so a key of that size can still be generated later. Once
// any ECDSA key is loaded only the loaded sizes remain.
func Resolve(caps Capabilities, bundle *Bundle) (*Snapshot, error) {
	reg := newRegistry(caps)
	anyKeys := false

	for _, family := range caps.Families() {
		switch {
		case family.SecurityKey():
			if err := reg.set(Slot{Family: family}, Disabled); err != nil {
				return nil, err
			}

		case family == FamilyECDSA:
			loadedAny := false
			for _, size := range ECDSASizes {
				loadedAny = loadedAny || bundle.Has(Slot{Family: FamilyECDSA, Size: size})
			}
			anyKeys = anyKeys || loadedAny

			for _, size := range ECDSASizes {
				slot := Slot{Family: FamilyECDSA, Size: size}
				state := Enabled
				if !bundle.Has(slot) && (loadedAny || size != caps.DefaultECDSASize()) {
					state = Disabled
				}
				if err := reg.set(slot, state); err != nil {
					return nil, err
				}
			}

		default:
			slot := Slot{Family: family}
			state := Disabled
			if bundle.Has(slot) {
				state = Enabled
				anyKeys = true
			}
			if err := reg.set(slot, state); err != nil {
				return nil, err
			}
		}
	}

	if !anyKeys {
		return nil, ErrNoHostKeys
	}
	return reg.freeze(), nil
}
