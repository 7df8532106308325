package config_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"fic-go/internal/config"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig("host-1", "/srv/fic")
	cfg.Verify.Workers = 8
	cfg.Export.S3Region = "eu-west-1"

	var buf bytes.Buffer
	m := &config.Manager{}
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.HostID != "host-1" || got.BaseDir != "/srv/fic" {
		t.Errorf("identity fields = %q, %q", got.HostID, got.BaseDir)
	}
	if got.Database.Type != "sqlite" || got.Database.DataDir != "/srv/fic/db" {
		t.Errorf("database = %+v", got.Database)
	}
	if got.Encryption.PublicKeyPath != "/srv/fic/keys/fic.pub" ||
		got.Encryption.PrivateKeyPath != "/srv/fic/keys/fic.key" {
		t.Errorf("encryption = %+v", got.Encryption)
	}
	if got.Verify.Workers != 8 {
		t.Errorf("Verify.Workers = %d, want 8", got.Verify.Workers)
	}
	if got.Export.S3Region != "eu-west-1" {
		t.Errorf("Export.S3Region = %q", got.Export.S3Region)
	}
}

func TestRead_BadTOML(t *testing.T) {
	t.Parallel()
	m := &config.Manager{}
	if _, err := m.Read(strings.NewReader("= not toml")); err == nil {
		t.Fatal("Read() of invalid TOML succeeded")
	}
}

func TestInit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conf", "fic.toml")
	cfg := config.NewConfig("host-1", "/srv/fic")

	if err := config.Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := config.ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.HostID != "host-1" {
		t.Errorf("HostID = %q", got.HostID)
	}

	// A second init must refuse to clobber the existing file.
	if err := config.Init(path, cfg); err == nil {
		t.Fatal("Init() over an existing config succeeded")
	}
}
