package hostkey

import (
	"fmt"
	"slices"
	"strings"
)

// Family is a class of host key signature algorithm.
type Family int

const (
	FamilyRSA Family = iota + 1
	FamilyDSS
	FamilyECDSA
	FamilyEd25519
	FamilySKECDSA
	FamilySKEd25519
)

var familyNames = map[Family]string{
	FamilyRSA:       "rsa",
	FamilyDSS:       "dss",
	FamilyECDSA:     "ecdsa",
	FamilyEd25519:   "ed25519",
	FamilySKECDSA:   "sk-ecdsa",
	FamilySKEd25519: "sk-ed25519",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// ParseFamily maps a configuration name such as "rsa" or "ED25519" to a Family.
func ParseFamily(name string) (Family, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for family, familyName := range familyNames {
		if familyName == name {
			return family, nil
		}
	}
	return 0, fmt.Errorf("unknown host key family: %q", name)
}

// SecurityKey reports whether the family is only usable with a hardware token.
func (f Family) SecurityKey() bool {
	return f == FamilySKECDSA || f == FamilySKEd25519
}

// ECDSA curve sizes. Each is negotiated as its own algorithm.
const (
	ECDSA256 = 256
	ECDSA384 = 384
	ECDSA521 = 521
)

// ECDSASizes lists every supported curve size in ascending order.
var ECDSASizes = []int{ECDSA256, ECDSA384, ECDSA521}

// Slot identifies one bundle position. Size is zero for every family except ECDSA.
type Slot struct {
	Family Family
	Size   int
}

func (s Slot) String() string {
	switch s.Family {
	case FamilyRSA:
		return "RSA"
	case FamilyDSS:
		return "DSS"
	case FamilyEd25519:
		return "ed25519"
	case FamilyECDSA:
		return fmt.Sprintf("ECDSA%d", s.Size)
	}
	return s.Family.String()
}

// Algorithm describes one negotiable host key signature algorithm.
type Algorithm struct {
	Name string
	Slot Slot
}

// catalog is the full set of algorithms this server knows about, in
// negotiation preference order.
var catalog = []Algorithm{
	{Name: "ssh-ed25519", Slot: Slot{Family: FamilyEd25519}},
	{Name: "ecdsa-sha2-nistp256", Slot: Slot{Family: FamilyECDSA, Size: ECDSA256}},
	{Name: "ecdsa-sha2-nistp384", Slot: Slot{Family: FamilyECDSA, Size: ECDSA384}},
	{Name: "ecdsa-sha2-nistp521", Slot: Slot{Family: FamilyECDSA, Size: ECDSA521}},
	{Name: "rsa-sha2-512", Slot: Slot{Family: FamilyRSA}},
	{Name: "rsa-sha2-256", Slot: Slot{Family: FamilyRSA}},
	{Name: "ssh-rsa", Slot: Slot{Family: FamilyRSA}},
	{Name: "ssh-dss", Slot: Slot{Family: FamilyDSS}},
	{Name: "sk-ecdsa-sha2-nistp256@openssh.com", Slot: Slot{Family: FamilySKECDSA}},
	{Name: "sk-ssh-ed25519@openssh.com", Slot: Slot{Family: FamilySKEd25519}},
}

// DefaultFamilies is the capability set used when configuration names none.
var DefaultFamilies = []Family{FamilyRSA, FamilyECDSA, FamilyEd25519, FamilySKECDSA, FamilySKEd25519}

// Capabilities is the static set of algorithm families compiled into the
// server, resolved once from configuration before any key is loaded.
type Capabilities struct {
	algorithms       []Algorithm
	families         []Family
	defaultECDSASize int
}

// NewCapabilities builds the capability set for families. defaultECDSASize is
// the curve that stays enabled when no ECDSA key is loaded at all.
func NewCapabilities(families []Family, defaultECDSASize int) (Capabilities, error) {
	if len(families) == 0 {
		families = DefaultFamilies
	}
	if slices.Contains(families, FamilyECDSA) && !slices.Contains(ECDSASizes, defaultECDSASize) {
		return Capabilities{}, fmt.Errorf("unsupported default ECDSA size %d", defaultECDSASize)
	}

	caps := Capabilities{defaultECDSASize: defaultECDSASize}
	for _, family := range families {
		if _, ok := familyNames[family]; !ok {
			return Capabilities{}, fmt.Errorf("unknown host key family: %d", int(family))
		}
		if !slices.Contains(caps.families, family) {
			caps.families = append(caps.families, family)
		}
	}
	for _, algo := range catalog {
		if slices.Contains(caps.families, algo.Slot.Family) {
			caps.algorithms = append(caps.algorithms, algo)
		}
	}
	return caps, nil
}

// Has reports whether family is part of the capability set.
func (c Capabilities) Has(family Family) bool {
	return slices.Contains(c.families, family)
}

// Families returns the configured families in configuration order.
func (c Capabilities) Families() []Family {
	return slices.Clone(c.families)
}

// Algorithms returns the candidate algorithms in preference order.
func (c Capabilities) Algorithms() []Algorithm {
	return slices.Clone(c.algorithms)
}

func (c Capabilities) DefaultECDSASize() int {
	return c.defaultECDSASize
}
