package dependency

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/barysiuk/agentlauncher/internal/core"
)

type fakeElevator struct {
	scripts []string
	err     error
}

func (e *fakeElevator) Elevate(_ context.Context, script string) error {
	e.scripts = append(e.scripts, script)
	return e.err
}

type recordingRunner struct {
	names []string
	args  [][]string
	out   string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, _ []string, _ string, name string, args ...string) (string, error) {
	r.names = append(r.names, name)
	r.args = append(r.args, args)
	return r.out, r.err
}

func zipWith(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("docs/"); err != nil {
		t.Fatal(err)
	}
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testDependency points a direct download at a test server.
func testDependency(name Name, url string, kind ArchiveKind, binary string) *BaseDependency {
	fileName := string(name) + ".zip"
	if kind == ArchivePkg {
		fileName = string(name) + ".pkg"
	}
	return &BaseDependency{
		name:        name,
		displayName: string(name),
		downloads: map[string]Download{
			"darwin": {URL: url, FileName: fileName, Kind: kind, Binary: binary},
		},
	}
}

func newDirectDownload(t *testing.T, elevator Elevator) *DirectDownload {
	t.Helper()
	client := NewHTTPClient(nil)
	client.RetryMax = 0
	return &DirectDownload{
		GOOS:       "darwin",
		HTTP:       client,
		TempDir:    t.TempDir(),
		InstallDir: "/usr/local/bin",
		Elevator:   elevator,
	}
}

func TestDirectDownload_Zip(t *testing.T) {
	payload := zipWith(t, "ffmpeg-6.1.1/ffmpeg", []byte("#!/bin/sh\n"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	elevator := &fakeElevator{}
	s := newDirectDownload(t, elevator)

	if err := s.Install(context.Background(), testDependency(FFmpeg, srv.URL, ArchiveZip, "ffmpeg")); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	bin := filepath.Join(s.TempDir, "ffmpeg")
	data, err := os.ReadFile(bin)
	if err != nil {
		t.Fatalf("binary not extracted: %v", err)
	}
	if string(data) != "#!/bin/sh\n" {
		t.Errorf("extracted content = %q", data)
	}

	if len(elevator.scripts) != 1 {
		t.Fatalf("expected one elevated script, got %d", len(elevator.scripts))
	}
	script := elevator.scripts[0]
	for _, part := range []string{"chmod +x", "mv", "/usr/local/bin/ffmpeg", bin} {
		if !strings.Contains(script, part) {
			t.Errorf("script %q missing %q", script, part)
		}
	}
}

func TestDirectDownload_Pkg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("xar!"))
	}))
	defer srv.Close()

	elevator := &fakeElevator{}
	s := newDirectDownload(t, elevator)

	if err := s.Install(context.Background(), testDependency(Node, srv.URL, ArchivePkg, "")); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	dest := filepath.Join(s.TempDir, "node.pkg")
	if !core.FileExists(dest) {
		t.Fatal("package not downloaded")
	}
	want := "installer -pkg " + dest + " -target /"
	if len(elevator.scripts) != 1 || elevator.scripts[0] != want {
		t.Errorf("scripts = %v, want %q", elevator.scripts, want)
	}
}

func TestDirectDownload_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	elevator := &fakeElevator{}
	s := newDirectDownload(t, elevator)

	err := s.Install(context.Background(), testDependency(Ngrok, srv.URL, ArchiveZip, "ngrok"))
	if err == nil || !strings.HasPrefix(err.Error(), "downloading ngrok: unexpected status 404 from ") {
		t.Fatalf("Install() error = %v", err)
	}
	if len(elevator.scripts) != 0 {
		t.Error("nothing should be elevated after a failed download")
	}
	if core.FileExists(filepath.Join(s.TempDir, "ngrok.zip")) {
		t.Error("failed download should not leave a file behind")
	}
}

func TestDirectDownload_MissingBinaryInArchive(t *testing.T) {
	payload := zipWith(t, "README", []byte("hi"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	s := newDirectDownload(t, &fakeElevator{})
	err := s.Install(context.Background(), testDependency(FFprobe, srv.URL, ArchiveZip, "ffprobe"))
	if err == nil || !strings.HasPrefix(err.Error(), "unzipping ffprobe: ") {
		t.Fatalf("Install() error = %v", err)
	}
}

func TestDirectDownload_ElevationDenied(t *testing.T) {
	payload := zipWith(t, "ngrok", []byte("bin"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	s := newDirectDownload(t, &fakeElevator{err: core.ErrElevationDenied})
	err := s.Install(context.Background(), testDependency(Ngrok, srv.URL, ArchiveZip, "ngrok"))
	if !errors.Is(err, core.ErrElevationDenied) {
		t.Errorf("expected ErrElevationDenied, got %v", err)
	}
}

func TestPackageManager_Choco(t *testing.T) {
	runner := &recordingRunner{}
	s := &PackageManager{Manager: "choco", Runner: runner}

	if err := s.Install(context.Background(), NewNode()); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if !reflect.DeepEqual(runner.names, []string{"choco"}) {
		t.Errorf("ran %v", runner.names)
	}
	if !reflect.DeepEqual(runner.args[0], []string{"install", "nodejs", "-y"}) {
		t.Errorf("args = %v", runner.args[0])
	}
}

func TestPackageManager_AptIsPrivileged(t *testing.T) {
	runner := &recordingRunner{}
	elevator := &fakeElevator{}
	s := &PackageManager{Manager: "apt-get", Runner: runner, Elevator: elevator}

	if err := s.Install(context.Background(), NewFFprobe()); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if len(runner.names) != 0 {
		t.Error("privileged installs must go through the elevator")
	}
	if len(elevator.scripts) != 1 || elevator.scripts[0] != "apt-get install -y ffmpeg" {
		t.Errorf("scripts = %v", elevator.scripts)
	}
}

func TestPackageManager_FailureCarriesOutput(t *testing.T) {
	runner := &recordingRunner{err: &core.CommandError{Output: "ngrok not found in feed\n", Err: errors.New("exit status 1")}}
	s := &PackageManager{Manager: "choco", Runner: runner}

	err := s.Install(context.Background(), NewNgrok())
	if err == nil || err.Error() != "ngrok not found in feed" {
		t.Errorf("Install() error = %v", err)
	}
}

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "download"},
		{"windows", "choco"},
		{"linux", "apt-get"},
		{"freebsd", "apt-get"},
	}
	for _, tt := range tests {
		s := StrategyFor(tt.goos, StrategyOptions{Runner: &recordingRunner{}})
		if s.Name() != tt.want {
			t.Errorf("StrategyFor(%q).Name() = %q, want %q", tt.goos, s.Name(), tt.want)
		}
	}

	linux := StrategyFor("linux", StrategyOptions{Runner: &recordingRunner{}}).(*PackageManager)
	if linux.Elevator == nil {
		t.Error("apt-get strategy should be privileged")
	}
	windows := StrategyFor("windows", StrategyOptions{Runner: &recordingRunner{}}).(*PackageManager)
	if windows.Elevator != nil {
		t.Error("choco strategy should not elevate")
	}
}

func TestOSAScriptElevator_Cancelled(t *testing.T) {
	runner := &recordingRunner{err: &core.CommandError{
		Output: "0:120: execution error: User canceled. (-128)",
		Err:    errors.New("exit status 1"),
	}}
	e := OSAScriptElevator{Runner: runner}

	err := e.Elevate(context.Background(), `mv "/tmp/a b" /usr/local/bin/x`)
	if !errors.Is(err, core.ErrElevationDenied) {
		t.Fatalf("expected ErrElevationDenied, got %v", err)
	}
	if runner.names[0] != "osascript" {
		t.Errorf("ran %q", runner.names[0])
	}
	as := runner.args[0][1]
	if !strings.Contains(as, `with administrator privileges`) || !strings.Contains(as, `\"/tmp/a b\"`) {
		t.Errorf("applescript = %q", as)
	}
}

func TestOSAScriptElevator_CommandFailure(t *testing.T) {
	runner := &recordingRunner{err: &core.CommandError{Output: "installer: Error", Err: errors.New("exit status 1")}}
	e := OSAScriptElevator{Runner: runner}

	err := e.Elevate(context.Background(), "installer -pkg x -target /")
	if err == nil || errors.Is(err, core.ErrElevationDenied) {
		t.Errorf("a failing command is not an elevation denial: %v", err)
	}
}

func TestSudoElevator_NonInteractive(t *testing.T) {
	runner := &recordingRunner{}
	e := SudoElevator{Runner: runner}

	if err := e.Elevate(context.Background(), "apt-get install -y ffmpeg"); err != nil {
		t.Fatalf("Elevate() error: %v", err)
	}
	want := []string{"-n", "sh", "-c", "apt-get install -y ffmpeg"}
	if runner.names[0] != "sudo" || !reflect.DeepEqual(runner.args[0], want) {
		t.Errorf("ran %s %v", runner.names[0], runner.args[0])
	}

	runner.err = &core.CommandError{Output: "sudo: a password is required", Err: errors.New("exit status 1")}
	if err := e.Elevate(context.Background(), "true"); !errors.Is(err, core.ErrElevationDenied) {
		t.Errorf("expected ErrElevationDenied, got %v", err)
	}
}

func TestSudoElevator_Interactive(t *testing.T) {
	tests := []struct {
		name       string
		authErr    error
		wantDenied bool
		wantRun    bool
	}{
		{name: "authenticated", wantRun: true},
		{name: "wrong password", authErr: errors.New("exit status 1"), wantDenied: true},
		{name: "sudo missing", authErr: exec.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			prompts := 0
			e := SudoElevator{
				Runner:      runner,
				Interactive: true,
				Authenticate: func(context.Context) error {
					prompts++
					return tt.authErr
				},
			}

			err := e.Elevate(context.Background(), "apt-get install -y ngrok")
			if prompts != 1 {
				t.Errorf("prompted %d times, want 1", prompts)
			}
			if got := errors.Is(err, core.ErrElevationDenied); got != tt.wantDenied {
				t.Errorf("denied = %v, want %v (err %v)", got, tt.wantDenied, err)
			}
			if ran := len(runner.names) > 0; ran != tt.wantRun {
				t.Fatalf("script ran = %v, want %v", ran, tt.wantRun)
			}
			if tt.wantRun {
				want := []string{"-n", "sh", "-c", "apt-get install -y ngrok"}
				if !reflect.DeepEqual(runner.args[0], want) {
					t.Errorf("ran sudo %v, want %v", runner.args[0], want)
				}
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"/usr/local/bin":  "/usr/local/bin",
		"/tmp/with space": "'/tmp/with space'",
		"it's":            `'it'\''s'`,
		"":                "''",
	}
	for in, want := range tests {
		if got := shellQuote(in); got != want {
			t.Errorf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureAll_DownloadFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	inst := NewInstaller(InstallerOptions{
		Dependencies: []Dependency{testDependency(FFmpeg, srv.URL, ArchiveZip, "ffmpeg")},
		Checker:      &fakeChecker{installed: map[string]bool{}},
		Strategy:     newDirectDownload(t, &fakeElevator{}),
	})

	var last ProgressEvent
	report := inst.EnsureAll(context.Background(), func(e ProgressEvent) { last = e })

	want := "Failed to install ffmpeg: downloading ffmpeg: unexpected status 404 from " + srv.URL
	if last.Message != want {
		t.Errorf("message = %q, want %q", last.Message, want)
	}
	if n := strings.Count(strings.ToLower(report.Details()), "failed"); n != 0 {
		t.Errorf("details %q should not repeat the failure prefix", report.Details())
	}
}
