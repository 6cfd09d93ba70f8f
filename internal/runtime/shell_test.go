package runtime

import (
	"bytes"
	"io"
	"os/exec"
	"testing"
)

func TestEmbeddedLauncherRun(t *testing.T) {
	var out bytes.Buffer
	l := &EmbeddedLauncher{Stdio: Stdio{Stdout: &out, Stderr: io.Discard}}
	status, err := l.Run("echo hi; exit 4")
	if err != nil {
		t.Fatal(err)
	}
	if status != 4 {
		t.Errorf("status = %d, want 4", status)
	}
	if out.String() != "hi\n" {
		t.Errorf("output = %q", out.String())
	}

	if _, err := l.Run("if then"); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEmbeddedLauncherReader(t *testing.T) {
	l := &EmbeddedLauncher{Stdio: Stdio{Stderr: io.Discard}}
	r, p, err := l.Reader("echo a; echo b")
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\nb\n" {
		t.Errorf("read %q", data)
	}
	if status, err := p.Wait(); status != 0 || err != nil {
		t.Errorf("Wait = %d, %v", status, err)
	}
}

func TestExecLauncher(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh in PATH")
	}
	var out bytes.Buffer
	l := NewLauncher("", nil, Stdio{Stdout: &out, Stderr: io.Discard})
	if _, ok := l.(*ExecLauncher); !ok {
		t.Fatalf("NewLauncher returned %T", l)
	}
	status, err := l.Run("echo x; exit 2")
	if err != nil || status != 2 {
		t.Fatalf("Run = %d, %v", status, err)
	}
	if out.String() != "x\n" {
		t.Errorf("output = %q", out.String())
	}

	w, p, err := l.Writer("tr a-z A-Z")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "shout\n")
	w.Close()
	if status, err := p.Wait(); status != 0 || err != nil {
		t.Fatalf("Wait = %d, %v", status, err)
	}
	if out.String() != "x\nSHOUT\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewLauncherBuiltin(t *testing.T) {
	if _, ok := NewLauncher("builtin", nil, Stdio{}).(*EmbeddedLauncher); !ok {
		t.Error("builtin shell should select the embedded launcher")
	}
}
