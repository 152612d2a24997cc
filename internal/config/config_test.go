package config

import (
	"os"
	"path/filepath"
	"testing"

	"servr/internal/consts"
	"servr/internal/hostkey"
)

func TestLoadHostKeyFile_Empty(t *testing.T) {
	file, err := LoadHostKeyFile("")
	if err != nil {
		t.Fatalf("LoadHostKeyFile: %v", err)
	}
	if file.ECDSADefaultSize != consts.ECDSA_DEFAULT_SIZE {
		t.Errorf("ECDSADefaultSize = %d, want %d", file.ECDSADefaultSize, consts.ECDSA_DEFAULT_SIZE)
	}
	if file.RSABits != consts.RSA_DEFAULT_BITS {
		t.Errorf("RSABits = %d, want %d", file.RSABits, consts.RSA_DEFAULT_BITS)
	}
}

func TestLoadHostKeyFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostkeys.yaml")
	data := `
families: [rsa, ecdsa, ed25519]
ecdsa_default_size: 384
strict_duplicates: true
keys:
  - family: ecdsa
    size: 521
    path: /keys/ecdsa521
  - family: ed25519
    path: /keys/ed25519
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := LoadHostKeyFile(path)
	if err != nil {
		t.Fatalf("LoadHostKeyFile: %v", err)
	}
	if file.ECDSADefaultSize != 384 {
		t.Errorf("ECDSADefaultSize = %d, want 384", file.ECDSADefaultSize)
	}
	if file.RSABits != consts.RSA_DEFAULT_BITS {
		t.Errorf("RSABits = %d, want default", file.RSABits)
	}
	if !file.StrictDuplicates {
		t.Error("StrictDuplicates should be true")
	}
	if len(file.Keys) != 2 {
		t.Fatalf("keys = %d, want 2", len(file.Keys))
	}

	caps, err := file.Capabilities()
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if caps.Has(hostkey.FamilySKEd25519) {
		t.Error("security key families were not configured")
	}

	sources, err := file.Sources(caps, nil)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	want := []hostkey.Source{
		{Family: hostkey.FamilyECDSA, Size: 521, Path: "/keys/ecdsa521"},
		{Family: hostkey.FamilyEd25519, Path: "/keys/ed25519"},
		{Family: hostkey.FamilyRSA, Path: consts.RSA_PRIV_FILENAME},
	}
	if len(sources) != len(want) {
		t.Fatalf("sources = %+v, want %+v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %+v, want %+v", i, sources[i], want[i])
		}
	}
}

func TestLoadHostKeyFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("keys: {not: a list"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHostKeyFile(path); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadHostKeyFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestSources_FlagCycle(t *testing.T) {
	caps, err := hostkey.NewCapabilities([]hostkey.Family{hostkey.FamilyRSA, hostkey.FamilyECDSA, hostkey.FamilyEd25519}, 256)
	if err != nil {
		t.Fatal(err)
	}

	sources, err := DefaultHostKeyFile().Sources(caps, []string{"/a", "/b", "/c", "/d"})
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	want := []hostkey.Family{hostkey.FamilyRSA, hostkey.FamilyECDSA, hostkey.FamilyEd25519, hostkey.FamilyRSA}
	if len(sources) != len(want) {
		t.Fatalf("sources = %+v", sources)
	}
	for i, family := range want {
		if sources[i].Family != family {
			t.Errorf("sources[%d].Family = %v, want %v", i, sources[i].Family, family)
		}
	}
}

func TestSources_DefaultsIncludeDSSOnlyWhenEnabled(t *testing.T) {
	caps, err := hostkey.NewCapabilities([]hostkey.Family{hostkey.FamilyDSS, hostkey.FamilyEd25519}, 256)
	if err != nil {
		t.Fatal(err)
	}
	sources, err := DefaultHostKeyFile().Sources(caps, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []hostkey.Source{
		{Family: hostkey.FamilyDSS, Path: consts.DSS_PRIV_FILENAME},
		{Family: hostkey.FamilyEd25519, Path: consts.ED25519_PRIV_FILENAME},
	}
	if len(sources) != len(want) {
		t.Fatalf("sources = %+v, want %+v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %+v, want %+v", i, sources[i], want[i])
		}
	}
}

func TestKeyEntry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		entry KeyEntry
	}{
		{"unknown family", KeyEntry{Family: "blowfish", Path: "/k"}},
		{"size on rsa", KeyEntry{Family: "rsa", Size: 256, Path: "/k"}},
		{"bad ecdsa size", KeyEntry{Family: "ecdsa", Size: 128, Path: "/k"}},
		{"security key", KeyEntry{Family: "sk-ed25519", Path: "/k"}},
		{"empty path", KeyEntry{Family: "ed25519"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.entry.source(); err == nil {
				t.Errorf("source(%+v) should fail", tt.entry)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got, want := ExpandHome("~/keys/rsa"), filepath.Join(home, "keys/rsa"); got != want {
		t.Errorf("ExpandHome = %q, want %q", got, want)
	}
	if got := ExpandHome("/etc/rsa"); got != "/etc/rsa" {
		t.Errorf("ExpandHome = %q, want unchanged", got)
	}
	if got := ExpandHome("~other/rsa"); got != "~other/rsa" {
		t.Errorf("ExpandHome = %q, want unchanged", got)
	}
}

func TestLoadSettings(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SFTP_ROOT", root)
	t.Setenv("SFTP_PORT", "2200")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.SFTPRoot != root {
		t.Errorf("SFTPRoot = %q, want %q", s.SFTPRoot, root)
	}
	if s.SFTPPort != 2200 {
		t.Errorf("SFTPPort = %d, want 2200", s.SFTPPort)
	}
	if s.StatusPort != consts.STATUS_PORT {
		t.Errorf("StatusPort = %d, want %d", s.StatusPort, consts.STATUS_PORT)
	}
}

func TestLoadSettings_RootMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SFTP_ROOT", file)
	if _, err := LoadSettings(); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("SFTP_ROOT", t.TempDir())

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.SFTPPort != consts.SFTP_PORT {
		t.Errorf("SFTPPort = %d, want %d", s.SFTPPort, consts.SFTP_PORT)
	}
	if s.User != "testuser" || s.Password != "testpass" {
		t.Errorf("credentials = %q/%q, want testuser/testpass", s.User, s.Password)
	}
}
