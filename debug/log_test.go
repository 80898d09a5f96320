package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategoryLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatalf("enable: %v", err)
	}
	defer Disable()

	Log("seq", "group=%d frame=%d", 1, 2)
	Dump("seq", "state", struct{ Group, Frame int }{1, 2})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Debug logging started") {
		t.Fatalf("missing start banner in %q", out)
	}
	if !strings.Contains(out, "seq        group=1 frame=2") {
		t.Fatalf("missing formatted line in %q", out)
	}
	if !strings.Contains(out, "Frame: (int) 2") {
		t.Fatalf("missing spew dump in %q", out)
	}
}

func TestLogIsSilentWhenDisabled(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatalf("expected logging disabled")
	}
	// must not panic without an open file
	Log("seq", "ignored")
	Dump("seq", "ignored", 1)
}
