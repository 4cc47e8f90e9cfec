package dependency

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAll_DeclaredOrder(t *testing.T) {
	want := []Name{Node, FFmpeg, FFprobe, Ngrok}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("expected %d dependencies, got %d", len(want), len(all))
	}
	for i, d := range all {
		if d.Name() != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, d.Name(), want[i])
		}
	}
}

func TestByNames(t *testing.T) {
	deps, err := ByNames([]string{"ngrok", "node"})
	if err != nil {
		t.Fatalf("ByNames() error: %v", err)
	}
	if deps[0].Name() != Ngrok || deps[1].Name() != Node {
		t.Errorf("got %s, %s", deps[0].Name(), deps[1].Name())
	}

	if _, err := ByNames([]string{"python"}); err == nil {
		t.Error("expected error for unknown dependency")
	}
}

func TestDependencyMetadata(t *testing.T) {
	tests := []struct {
		name    Name
		label   string
		url     string
		kind    ArchiveKind
		aptPkg  string
		chocPkg string
	}{
		{Node, "Node.js", "https://nodejs.org/dist/v20.11.1/node-v20.11.1.pkg", ArchivePkg, "nodejs", "nodejs"},
		{FFmpeg, "ffmpeg", "https://evermeet.cx/ffmpeg/ffmpeg-6.1.1.zip", ArchiveZip, "ffmpeg", "ffmpeg"},
		{FFprobe, "ffprobe", "https://evermeet.cx/ffmpeg/ffprobe-6.1.1.zip", ArchiveZip, "ffmpeg", "ffmpeg"},
		{Ngrok, "ngrok", "https://bin.equinox.io/c/4VmDzA7iaHb/ngrok-stable-darwin-arm64.zip", ArchiveZip, "ngrok", "ngrok"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			d, ok := ByName(tt.name)
			if !ok {
				t.Fatalf("%s not registered", tt.name)
			}
			if d.DisplayName() != tt.label {
				t.Errorf("DisplayName() = %q", d.DisplayName())
			}
			if d.Command() != string(tt.name) {
				t.Errorf("Command() = %q", d.Command())
			}
			dl, ok := d.Download("darwin")
			if !ok || dl.URL != tt.url || dl.Kind != tt.kind {
				t.Errorf("Download(darwin) = %+v, %v", dl, ok)
			}
			if _, ok := d.Download("linux"); ok {
				t.Error("no direct download expected on linux")
			}
			if got := d.Package("apt-get"); got != tt.aptPkg {
				t.Errorf("Package(apt-get) = %q, want %q", got, tt.aptPkg)
			}
			if got := d.Package("choco"); got != tt.chocPkg {
				t.Errorf("Package(choco) = %q, want %q", got, tt.chocPkg)
			}
		})
	}
}

func TestNgrokAuthConfigured(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		content string
		want    bool
	}{
		{"v3 agent block", ".config/ngrok/ngrok.yml", "version: \"3\"\nagent:\n  authtoken: abc123\n", true},
		{"v2 top level", ".ngrok2/ngrok.yml", "authtoken: xyz\n", true},
		{"no token", ".config/ngrok/ngrok.yml", "version: \"3\"\nagent:\n  region: eu\n", false},
		{"malformed", ".config/ngrok/ngrok.yml", "agent: [unclosed\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			path := filepath.Join(home, filepath.FromSlash(tt.rel))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, where := NgrokAuthConfigured(home)
			if got != tt.want {
				t.Errorf("NgrokAuthConfigured() = %v, want %v", got, tt.want)
			}
			if got && where != path {
				t.Errorf("path = %q, want %q", where, path)
			}
		})
	}

	if ok, _ := NgrokAuthConfigured(t.TempDir()); ok {
		t.Error("empty home should report no authtoken")
	}
}
