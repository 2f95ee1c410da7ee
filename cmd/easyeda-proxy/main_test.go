package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func TestLoadHostsFirstRunPrompts(t *testing.T) {
	t.Setenv(envAllowedDomains, "")
	path := filepath.Join(t.TempDir(), ".env")
	var out bytes.Buffer

	hosts, err := loadHosts(path, strings.NewReader("waka.hackclub.com,api.wakatime.com\n"), &out)
	if err != nil {
		t.Fatalf("loadHosts: %v", err)
	}
	if len(hosts) != 2 || hosts[0] != "waka.hackclub.com" {
		t.Errorf("hosts: got %q", hosts)
	}
	if !strings.Contains(out.String(), "Welcome!") {
		t.Errorf("prompt not shown: %q", out.String())
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("read written .env: %v", err)
	}
	if env[envAllowedDomains] != "waka.hackclub.com,api.wakatime.com" {
		t.Errorf("written value: got %q", env[envAllowedDomains])
	}
}

func TestLoadHostsExistingFile(t *testing.T) {
	t.Setenv(envAllowedDomains, "")
	os.Unsetenv(envAllowedDomains)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ALLOWED_DOMAINS=api.wakatime.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer

	hosts, err := loadHosts(path, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("loadHosts: %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "api.wakatime.com" {
		t.Errorf("hosts: got %q", hosts)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected prompt: %q", out.String())
	}
}

func TestLoadHostsNoInput(t *testing.T) {
	t.Setenv(envAllowedDomains, "")
	path := filepath.Join(t.TempDir(), ".env")

	if _, err := loadHosts(path, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error on empty stdin")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error(".env should not be written without input")
	}
}
