package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/somnolab/somno/internal/usleep"
)

func writeTemp(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckScorePaths(t *testing.T) {
	input := writeTemp(t, "night.edf")
	output := filepath.Join(t.TempDir(), "hypnogram.tsv")

	inPath, outPath, err := checkScorePaths(input, output, "", false)
	if err != nil {
		t.Fatalf("checkScorePaths returned error: %v", err)
	}
	if !filepath.IsAbs(inPath) || !filepath.IsAbs(outPath) {
		t.Fatalf("paths not absolute: %q %q", inPath, outPath)
	}

	if _, _, err := checkScorePaths(filepath.Join(t.TempDir(), "missing.edf"), output, "", false); err == nil {
		t.Fatalf("accepted a missing input file")
	}
	if _, _, err := checkScorePaths(writeTemp(t, "night.fif"), output, "", false); err == nil {
		t.Fatalf("accepted a non-EDF input file")
	}
	if _, _, err := checkScorePaths(input, filepath.Join(t.TempDir(), "out.pdf"), "", false); err == nil {
		t.Fatalf("accepted an unknown output extension")
	}
}

func TestCheckScorePaths_OverwriteGuard(t *testing.T) {
	input := writeTemp(t, "night.edf")
	existing := writeTemp(t, "hypnogram.tsv")

	_, _, err := checkScorePaths(input, existing, "", false)
	if err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("error = %v, want refusal mentioning --overwrite", err)
	}
	if _, _, err := checkScorePaths(input, existing, "", true); err != nil {
		t.Fatalf("overwrite refused with the flag set: %v", err)
	}

	logFile := writeTemp(t, "run.log")
	output := filepath.Join(t.TempDir(), "hypnogram.tsv")
	if _, _, err := checkScorePaths(input, output, logFile, false); err == nil {
		t.Fatalf("accepted an existing log file without --overwrite")
	}
}

func TestCheckOutputExt(t *testing.T) {
	for _, path := range []string{"a.tsv", "b.txt", "c.npy", "d.TSV"} {
		if err := checkOutputExt(path); err != nil {
			t.Errorf("checkOutputExt(%q) = %v, want nil", path, err)
		}
	}
	for _, path := range []string{"a.csv", "noext", "a.npy.gz"} {
		if err := checkOutputExt(path); err == nil {
			t.Errorf("checkOutputExt(%q) = nil, want error", path)
		}
	}
}

func TestParseChannelGroups(t *testing.T) {
	groups, err := parseChannelGroups([]string{"C3-A2++EOG", "C4-A1"})
	if err != nil {
		t.Fatalf("parseChannelGroups returned error: %v", err)
	}
	want := []usleep.ChannelGroup{{"C3-A2", "EOG"}, {"C4-A1"}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("groups = %v, want %v", groups, want)
	}

	if _, err := parseChannelGroups([]string{"++EOG"}); err == nil {
		t.Fatalf("accepted a group with an empty channel name")
	}
	if groups, err := parseChannelGroups(nil); err != nil || groups != nil {
		t.Fatalf("empty input = %v, %v", groups, err)
	}
}
