package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_EmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 3001 {
		t.Errorf("Port = %d, want 3001", cfg.Port)
	}
	if cfg.Title != "Dashboard" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Dashboard")
	}
	if cfg.Dir != "" {
		t.Errorf("Dir = %q, want empty", cfg.Dir)
	}
	if cfg.Open {
		t.Error("Open = true, want false")
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Marketing Dashboard
port: 4000
dir: /srv/dashboard
open: true
headers:
  cross-origin-opener-policy: same-origin
  X-Served-By: dashserve
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Marketing Dashboard" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.Dir != "/srv/dashboard" {
		t.Errorf("Dir = %q, want /srv/dashboard", cfg.Dir)
	}
	if !cfg.Open {
		t.Error("Open = false, want true")
	}
	if cfg.Headers["Cross-Origin-Opener-Policy"] != "same-origin" {
		t.Errorf("Headers = %v, want canonicalised Cross-Origin-Opener-Policy", cfg.Headers)
	}
	if cfg.Headers["X-Served-By"] != "dashserve" {
		t.Errorf("Headers[X-Served-By] = %q", cfg.Headers["X-Served-By"])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "port: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "port type",
			yaml:    "port: abc",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "port too high",
			yaml:    "port: 70000",
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "negative port",
			yaml:    "port: -5",
			wantErr: "port must be between 1 and 65535",
		},
		{
			name: "reserved header",
			yaml: `
headers:
  Access-Control-Allow-Origin: https://example.com
`,
			wantErr: "cannot be overridden",
		},
		{
			name: "invalid header name",
			yaml: `
headers:
  "Bad Header": x
`,
			wantErr: "invalid header name",
		},
		{
			name: "duplicate header name",
			yaml: `
headers:
  x-frame-options: DENY
  X-Frame-Options: SAMEORIGIN
`,
			wantErr: `"X-Frame-Options" is set more than once`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RevalidatesCanonicalHeaders(t *testing.T) {
	cfg, err := Parse([]byte("headers:\n  x-served-by: dashserve\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// loadConfig validates again after applying flags
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := cfg.Headers["X-Served-By"]; got != "dashserve" {
		t.Errorf("Headers = %v, want X-Served-By: dashserve", cfg.Headers)
	}
}

func TestLoad_RelativeDirResolvedAgainstConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "web"), 0o755); err != nil {
		t.Fatalf("Mkdir error = %v", err)
	}
	configPath := filepath.Join(tmpDir, "dashserve.yaml")
	if err := os.WriteFile(configPath, []byte("dir: web\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(tmpDir, "web"); cfg.Dir != want {
		t.Errorf("Dir = %q, want %q", cfg.Dir, want)
	}
}

func TestLoad_DirMustExist(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "dashserve.yaml")
	if err := os.WriteFile(configPath, []byte("dir: nowhere\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing dir, got nil")
	}
	if !strings.Contains(err.Error(), "dir:") {
		t.Errorf("error = %v, want it to mention dir", err)
	}
}

func TestLoad_DirMustBeDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "file.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	configPath := filepath.Join(tmpDir, "dashserve.yaml")
	if err := os.WriteFile(configPath, []byte("dir: file.txt\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for file dir, got nil")
	}
	if !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("error = %v, want 'not a directory'", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/dashserve.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := &Config{
		Port:    4000,
		Dir:     t.TempDir(),
		Headers: map[string]string{"X-Test": "1"},
	}

	if got := len(cfg.Options()); got != 3 {
		t.Errorf("len(Options()) = %d, want 3 (port, root, header)", got)
	}

	if got := len(Default().Options()); got != 1 {
		t.Errorf("len(Default().Options()) = %d, want 1 (port)", got)
	}
}
