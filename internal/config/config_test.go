package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panetrans.yaml")
	body := "backend_url: http://backend:5000/\ntarget_lang: ja\nai_model: Kimi\ntimeout: 90s\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PANETRANS_TARGET_LANG", "de")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://backend:5000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.TargetLang != "de" {
		t.Errorf("TargetLang = %q, want env override", cfg.TargetLang)
	}
	if cfg.AIModel != "kimi" {
		t.Errorf("AIModel = %q, want canonical key", cfg.AIModel)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestMergeYAML_UnknownField(t *testing.T) {
	cfg := Default()
	err := cfg.mergeYAML([]byte("backend: http://x\n"), "test.yaml")
	if err == nil || !strings.Contains(err.Error(), "test.yaml") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if err := cfg.mergeYAML(nil, "empty.yaml"); err != nil {
		t.Fatalf("empty file should be accepted: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PANETRANS_IMAGE_MODE": "whole",
		"PANETRANS_DEBUG":      "true",
		"PANETRANS_TIMEOUT":    "2m",
		"PANETRANS_AI_MODEL":   "  ",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.ImageMode != "whole" || !cfg.Debug || cfg.Timeout != 2*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.AIModel != Default().AIModel {
		t.Fatalf("blank env value should not override, got %q", cfg.AIModel)
	}

	if err := cfg.ApplyEnv(envMap(map[string]string{"PANETRANS_TIMEOUT": "soon"})); err == nil {
		t.Fatal("expected error for invalid timeout")
	}
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--mode", "WHOLE", "--timeout", "1s"}); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.TargetLang = "ko"
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("ApplyFlags: %v", err)
	}
	if cfg.ImageMode != "whole" {
		t.Errorf("ImageMode = %q", cfg.ImageMode)
	}
	if cfg.TargetLang != "ko" {
		t.Errorf("unset flag overrode TargetLang: %q", cfg.TargetLang)
	}
	if cfg.Timeout != MinTimeout {
		t.Errorf("Timeout = %v, want clamp to %v", cfg.Timeout, MinTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ftp backend", func(c *Config) { c.BackendURL = "ftp://x" }, "http or https"},
		{"no host", func(c *Config) { c.BackendURL = "http://" }, "no host"},
		{"language", func(c *Config) { c.TargetLang = "klingon" }, "unsupported target language"},
		{"model", func(c *Config) { c.AIModel = "gpt-9" }, "unsupported AI model"},
		{"mode", func(c *Config) { c.ImageMode = "tiles" }, "invalid image mode"},
		{"addr", func(c *Config) { c.PreviewAddr = "localhost" }, "invalid preview address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize_Timeout(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, Default().Timeout},
		{time.Second, MinTimeout},
		{time.Hour, MaxTimeout},
		{time.Minute, time.Minute},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Timeout = tt.in
		cfg.Normalize()
		if cfg.Timeout != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, cfg.Timeout, tt.want)
		}
	}
}
