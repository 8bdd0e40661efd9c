package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"empty manifest", func(c *Config) { c.Manifest = "" }, "manifest"},
		{"manifest path", func(c *Config) { c.Manifest = "conf/wok.yml" }, "manifest"},
		{"manifest extension", func(c *Config) { c.Manifest = "wok.json" }, "manifest"},
		{"empty trunk", func(c *Config) { c.Trunk = "" }, "trunk"},
		{"trunk with space", func(c *Config) { c.Trunk = "my trunk" }, "trunk"},
		{"remote with slash", func(c *Config) { c.Remote = "a/b" }, "remote"},
		{"empty git binary", func(c *Config) { c.Git.Binary = "  " }, "git.binary"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"negative max size", func(c *Config) { c.Logging.MaxSizeMB = -1 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -2 }, "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_AcceptsVariants(t *testing.T) {
	cfg := Default()
	cfg.Manifest = "wok.TOML"
	cfg.Trunk = "release/2.x"
	cfg.Remote = "up-stream"
	cfg.Logging.Level = "DEBUG"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestCheckBranchName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"master", true},
		{"feature/login", true},
		{"v1.2", true},
		{"", false},
		{"@", false},
		{"-x", false},
		{"a..b", false},
		{"a b", false},
		{"a~1", false},
		{"a^", false},
		{"a:b", false},
		{"a?", false},
		{"a*", false},
		{"a[", false},
		{"trailing/", false},
		{"/leading", false},
		{"x.lock", false},
		{"x.", false},
		{"a//b", false},
		{"a@{1}", false},
		{"feature/.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := CheckBranchName(tt.name)
			if (msg == "") != tt.valid {
				t.Errorf("CheckBranchName(%q) = %q, valid want %v", tt.name, msg, tt.valid)
			}
		})
	}
}
