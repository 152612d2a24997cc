package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"servr/internal/consts"
	"servr/internal/hostkey"

	"gopkg.in/yaml.v3"
)

// HostKeyFile is the YAML host key configuration.
type HostKeyFile struct {
	Families         []string   `yaml:"families,omitempty"`
	ECDSADefaultSize int        `yaml:"ecdsa_default_size,omitempty"`
	RSABits          int        `yaml:"rsa_bits,omitempty"`
	StrictDuplicates bool       `yaml:"strict_duplicates,omitempty"`
	Keys             []KeyEntry `yaml:"keys,omitempty"`
}

type KeyEntry struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size,omitempty"`
	Path   string `yaml:"path"`
}

// flagOrder is the family each successive -r flag is assigned to.
var flagOrder = []hostkey.Family{hostkey.FamilyDSS, hostkey.FamilyRSA, hostkey.FamilyECDSA, hostkey.FamilyEd25519}

var defaultPaths = map[hostkey.Family]string{
	hostkey.FamilyDSS:     consts.DSS_PRIV_FILENAME,
	hostkey.FamilyRSA:     consts.RSA_PRIV_FILENAME,
	hostkey.FamilyECDSA:   consts.ECDSA_PRIV_FILENAME,
	hostkey.FamilyEd25519: consts.ED25519_PRIV_FILENAME,
}

func DefaultHostKeyFile() HostKeyFile {
	return HostKeyFile{
		ECDSADefaultSize: consts.ECDSA_DEFAULT_SIZE,
		RSABits:          consts.RSA_DEFAULT_BITS,
	}
}

// LoadHostKeyFile reads path on top of the defaults. An empty path returns the
// defaults unchanged.
func LoadHostKeyFile(path string) (HostKeyFile, error) {
	file := DefaultHostKeyFile()
	if path == "" {
		return file, nil
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return HostKeyFile{}, fmt.Errorf("read host key config: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return HostKeyFile{}, fmt.Errorf("parse host key config %s: %w", path, err)
	}
	if file.ECDSADefaultSize == 0 {
		file.ECDSADefaultSize = consts.ECDSA_DEFAULT_SIZE
	}
	if file.RSABits == 0 {
		file.RSABits = consts.RSA_DEFAULT_BITS
	}
	return file, nil
}

// Capabilities resolves the configured family names into the static
// capability set.
func (f HostKeyFile) Capabilities() (hostkey.Capabilities, error) {
	var families []hostkey.Family
	for _, name := range f.Families {
		family, err := hostkey.ParseFamily(name)
		if err != nil {
			return hostkey.Capabilities{}, err
		}
		families = append(families, family)
	}
	return hostkey.NewCapabilities(families, f.ECDSADefaultSize)
}

// Sources lists the key files to load, in order: paths given with -r
// (assigned to families in the order DSS, RSA, ECDSA, ED25519, skipping
// families outside caps), then entries from the file, then the compiled-in
// default for any loadable family still without a source.
func (f HostKeyFile) Sources(caps hostkey.Capabilities, flagPaths []string) ([]hostkey.Source, error) {
	var sources []hostkey.Source

	var order []hostkey.Family
	for _, family := range flagOrder {
		if caps.Has(family) {
			order = append(order, family)
		}
	}
	if len(flagPaths) > 0 && len(order) == 0 {
		return nil, errors.New("no host key family accepts -r keyfiles")
	}
	for i, path := range flagPaths {
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("empty -r keyfile")
		}
		sources = append(sources, hostkey.Source{Family: order[i%len(order)], Path: ExpandHome(path)})
	}

	for _, entry := range f.Keys {
		src, err := entry.source()
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	for _, family := range flagOrder {
		if !caps.Has(family) {
			continue
		}
		configured := slices.ContainsFunc(sources, func(s hostkey.Source) bool { return s.Family == family })
		if !configured {
			sources = append(sources, hostkey.Source{Family: family, Path: defaultPaths[family]})
		}
	}
	return sources, nil
}

func (e KeyEntry) source() (hostkey.Source, error) {
	family, err := hostkey.ParseFamily(e.Family)
	if err != nil {
		return hostkey.Source{}, err
	}
	if family.SecurityKey() {
		return hostkey.Source{}, fmt.Errorf("%s keys cannot be used as host keys", family)
	}
	if e.Size != 0 && (family != hostkey.FamilyECDSA || !slices.Contains(hostkey.ECDSASizes, e.Size)) {
		return hostkey.Source{}, fmt.Errorf("invalid size %d for %s key", e.Size, family)
	}
	if strings.TrimSpace(e.Path) == "" {
		return hostkey.Source{}, fmt.Errorf("%s key entry has no path", family)
	}
	return hostkey.Source{Family: family, Size: e.Size, Path: ExpandHome(e.Path)}, nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
