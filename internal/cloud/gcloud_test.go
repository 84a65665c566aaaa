package cloud

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	tferrors "github.com/tilefetch/tilefetch/internal/errors"
)

// writeTool writes a fake storage CLI that runs body as a shell script.
func writeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI needs a POSIX shell")
	}
	tool := filepath.Join(t.TempDir(), "gcloud")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(tool, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return tool
}

func TestCLIProvider_List(t *testing.T) {
	tool := writeTool(t, `
echo "gs://b/23/K/RT/S2A_MSIL2A_20250101T131239_N0511.SAFE/"
echo ""
echo "  gs://b/23/K/RT/notes.txt  "
`)
	p := NewCLIProvider(tool)

	entries, err := p.List(context.Background(), "gs://b/23/K/RT/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"gs://b/23/K/RT/S2A_MSIL2A_20250101T131239_N0511.SAFE/", "gs://b/23/K/RT/notes.txt"}
	if len(entries) != len(want) {
		t.Fatalf("List() = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i], want[i])
		}
	}
}

func TestCLIProvider_ListFailureCapturesStderr(t *testing.T) {
	tool := writeTool(t, `echo "ERROR: (gcloud.storage.ls) One or more URLs matched no objects." >&2; exit 1`)
	p := NewCLIProvider(tool)

	_, err := p.List(context.Background(), "gs://b/99/X/ZZ/")
	if err == nil {
		t.Fatal("expected error")
	}
	if tferrors.DetectErrorType(err) != tferrors.ListError {
		t.Errorf("expected ListError, got %v", tferrors.DetectErrorType(err))
	}
	if !strings.Contains(err.Error(), "matched no objects") {
		t.Errorf("stderr not captured: %v", err)
	}
}

func TestCLIProvider_ArgumentSyntax(t *testing.T) {
	dir := t.TempDir()
	calls := filepath.Join(dir, "calls")
	tool := writeTool(t, `echo "$@" >> "`+calls+`"`)
	p := NewCLIProvider(tool, "--billing-project=demo")
	ctx := context.Background()

	if _, err := p.List(ctx, "gs://b/p/"); err != nil {
		t.Fatal(err)
	}
	if err := p.Fetch(ctx, "gs://b/p/A.SAFE/MTD_MSIL2A.xml", "/tmp/x.xml"); err != nil {
		t.Fatal(err)
	}
	if err := p.CopyRecursive(ctx, "gs://b/p/A.SAFE/", "out/23/K/RT"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(calls)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"storage ls --billing-project=demo gs://b/p/",
		"storage cp --billing-project=demo gs://b/p/A.SAFE/MTD_MSIL2A.xml /tmp/x.xml",
		"storage cp --billing-project=demo -r gs://b/p/A.SAFE/ out/23/K/RT",
	}
	if len(lines) != len(want) {
		t.Fatalf("calls = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCLIProvider_FetchWritesFile(t *testing.T) {
	tool := writeTool(t, `printf '<root/>' > "$4"`)
	p := NewCLIProvider(tool)
	dst := filepath.Join(t.TempDir(), "mtd.xml")

	if err := p.Fetch(context.Background(), "gs://b/A.SAFE/MTD_MSIL2A.xml", dst); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "<root/>" {
		t.Errorf("unexpected fetched content %q, err %v", data, err)
	}
}

func TestCLIProvider_CopyFailure(t *testing.T) {
	tool := writeTool(t, `echo "network unreachable" >&2; exit 2`)
	p := NewCLIProvider(tool)

	err := p.CopyRecursive(context.Background(), "gs://b/A.SAFE/", t.TempDir())
	if tferrors.DetectErrorType(err) != tferrors.CopyError {
		t.Fatalf("expected CopyError, got %v", err)
	}
	if !strings.Contains(err.Error(), "network unreachable") {
		t.Errorf("stderr not captured: %v", err)
	}
}

func TestCLIProvider_Available(t *testing.T) {
	tool := writeTool(t, `exit 0`)
	if err := NewCLIProvider(tool).Available(); err != nil {
		t.Errorf("Available() error = %v", err)
	}

	err := NewCLIProvider("tilefetch-no-such-tool-xyz").Available()
	if !tferrors.IsToolNotFound(err) {
		t.Errorf("expected tool-not-found error, got %v", err)
	}
	if err := CheckAvailable(NewCLIProvider("tilefetch-no-such-tool-xyz")); err == nil {
		t.Error("CheckAvailable() should surface the missing tool")
	}
}

func TestNewCLIProvider_DefaultTool(t *testing.T) {
	p := NewCLIProvider("")
	if p.tool != DefaultTool {
		t.Errorf("tool = %s, want %s", p.tool, DefaultTool)
	}
	if p.Name() != "gcloud storage" {
		t.Errorf("Name() = %s", p.Name())
	}
}
