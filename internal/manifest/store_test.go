package manifest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/wokspace/wok/internal/errors"
)

func sampleConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Ref:     "feature",
		Repos: []Repo{
			{URL: "git@host:prj-1.git", Path: "prj-1", Ref: "feature"},
			{URL: "https://host/prj-2.git", Path: "libs/prj-2", Ref: "master"},
		},
	}
}

func TestNewStore_Extension(t *testing.T) {
	fs := afero.NewMemMapFs()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"/w/wok.yml", FormatYAML, false},
		{"/w/wok.yaml", FormatYAML, false},
		{"/w/wok.toml", FormatTOML, false},
		{"/w/wok.json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s, err := NewStore(fs, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if s.Format() != tt.want {
				t.Errorf("Format() = %q, want %q", s.Format(), tt.want)
			}
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"/w/wok.yml", "/w/wok.toml"} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			s, err := NewStore(fs, name)
			if err != nil {
				t.Fatal(err)
			}

			want := sampleConfig()
			if err := s.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			if ok, _ := afero.Exists(fs, "/w/."+name[3:]+".tmp"); ok {
				t.Error("Save() left its temporary file behind")
			}
		})
	}
}

func TestStore_Save_KeyOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewStore(fs, "/w/wok.yml")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(sampleConfig()); err != nil {
		t.Fatal(err)
	}

	data, err := afero.ReadFile(fs, "/w/wok.yml")
	if err != nil {
		t.Fatal(err)
	}
	want := `version: "1.0"
ref: feature
repos:
  - url: git@host:prj-1.git
    path: prj-1
    ref: feature
  - url: https://host/prj-2.git
    path: libs/prj-2
    ref: master
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("encoded manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Load_Strict(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"yaml unknown top-level", "/w/wok.yml", "version: '1.0'\nref: master\nrepos: []\nextra: 1\n"},
		{"yaml unknown repo field", "/w/wok.yml", "version: '1.0'\nref: master\nrepos:\n  - url: u\n    path: p\n    branch: x\n"},
		{"yaml empty", "/w/wok.yml", ""},
		{"yaml missing ref", "/w/wok.yml", "version: '1.0'\nrepos: []\n"},
		{"toml unknown field", "/w/wok.toml", "version = '1.0'\nref = 'master'\nextra = 1\n"},
		{"toml malformed", "/w/wok.toml", "version = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			s, err := NewStore(fs, tt.path)
			if err != nil {
				t.Fatal(err)
			}

			_, err = s.Load()
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("Load() error = %v, want validation error", err)
			}
		})
	}
}

func TestStore_Load_DefaultRef(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "version: '1.0'\nref: master\nrepos:\n  - url: u\n    path: p\n"
	if err := afero.WriteFile(fs, "/w/wok.yml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewStore(fs, "/w/wok.yml")

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Repos[0].Ref != "master" {
		t.Errorf("Ref = %q, want master", cfg.Repos[0].Ref)
	}
}

func TestStore_Load_Missing(t *testing.T) {
	s, _ := NewStore(afero.NewMemMapFs(), "/w/wok.yml")

	_, err := s.Load()
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Load() error = %v, want not found", err)
	}
	if !errors.Is(err, errors.ErrManifestNotFound) {
		t.Errorf("Load() error = %v, want ErrManifestNotFound", err)
	}
}

func TestStore_Create(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, _ := NewStore(fs, "/w/wok.yml")

	cfg, err := s.Create("master")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if diff := cmp.Diff(New("master"), cfg); diff != "" {
		t.Errorf("Create() mismatch (-want +got):\n%s", diff)
	}

	data, _ := afero.ReadFile(fs, "/w/wok.yml")
	if !strings.Contains(string(data), "repos: []") {
		t.Errorf("fresh manifest should list no repos, got:\n%s", data)
	}

	_, err = s.Create("master")
	if !errors.Is(err, errors.ErrConflict) || !errors.Is(err, errors.ErrManifestExists) {
		t.Errorf("second Create() error = %v, want manifest conflict", err)
	}
}
