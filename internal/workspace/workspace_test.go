//go:build integration

package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/wokspace/wok/internal/config"
	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/testutil"
)

func setup(t *testing.T) string {
	t.Helper()
	testutil.SkipIfNoGit(t)
	testutil.IsolateGit(t)
	return testutil.SetupTestRepo(t)
}

func TestOpen_DiscoversRootFromSubdirectory(t *testing.T) {
	root := setup(t)
	testutil.WriteFile(t, root, "src/pkg/file.go", "package pkg\n")

	ws, err := Open(context.Background(), Options{Dir: filepath.Join(root, "src", "pkg")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(ws.Root.Dir())
	if got != want {
		t.Errorf("Root.Dir() = %s, want %s", got, want)
	}
	if ws.HasConfig() {
		t.Error("HasConfig() = true before init")
	}
	if _, err := ws.Config(); !errors.Is(err, errors.ErrManifestNotFound) {
		t.Errorf("Config() error = %v, want ErrManifestNotFound", err)
	}
}

func TestOpen_LoadsManifest(t *testing.T) {
	root := setup(t)
	settings := config.Default()
	settings.Manifest = "wok.toml"

	ws, err := Open(context.Background(), Options{Dir: root, Settings: settings})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.CreateConfig("dev"); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	if filepath.Base(ws.ManifestPath()) != "wok.toml" {
		t.Errorf("ManifestPath() = %s", ws.ManifestPath())
	}

	reopened, err := Open(context.Background(), Options{Dir: root, Settings: settings})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := reopened.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.Ref != "dev" {
		t.Errorf("Ref = %q, want dev", cfg.Ref)
	}
}

func TestOpen_ManifestOnMemFs(t *testing.T) {
	root := setup(t)
	fs := afero.NewMemMapFs()

	ws, err := Open(context.Background(), Options{Dir: root, Fs: fs})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.CreateConfig("master"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, ws.ManifestPath()); !ok {
		t.Error("manifest not written to the supplied filesystem")
	}
	if ok, _ := afero.Exists(afero.NewOsFs(), ws.ManifestPath()); ok {
		t.Error("manifest leaked onto the OS filesystem")
	}
}

func TestRelPath(t *testing.T) {
	root := setup(t)
	ws, err := Open(context.Background(), Options{Dir: root})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cwd     string
		path    string
		want    string
		wantErr bool
	}{
		{name: "relative to root", cwd: root, path: "libs/a", want: "libs/a"},
		{name: "relative to subdirectory", cwd: filepath.Join(root, "libs"), path: "a", want: "libs/a"},
		{name: "absolute", cwd: "/", path: filepath.Join(root, "b"), want: "b"},
		{name: "cleaned", cwd: root, path: "./x/../y", want: "y"},
		{name: "root itself", cwd: root, path: ".", wantErr: true},
		{name: "outside", cwd: root, path: "../elsewhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ws.RelPath(tt.cwd, tt.path)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("RelPath() error = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RelPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RelPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
