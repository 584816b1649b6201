package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/media"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	flagWorksDir, flagDebug, flagConfig = "", false, ""
	flagWorksJSON, flagResolveJSON = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeWorks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"first.md":  "---\ntitle: First\nyear: 2022\ntags: [a, b]\n---\n",
		"second.md": "---\ntitle: Second\nyear: 2024\nmonth: 6\n---\nhttps://x.com/foo/status/1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestWorksCommandTSV(t *testing.T) {
	dir := writeWorks(t)

	out, err := runCLI(t, "works", "--works-dir", dir)
	if err != nil {
		t.Fatalf("works error: %v", err)
	}

	want := "second\t2024-06\tSecond\t\nfirst\t2022\tFirst\ta,b\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestWorksCommandJSON(t *testing.T) {
	dir := writeWorks(t)

	out, err := runCLI(t, "works", "second", "--json", "--works-dir", dir)
	if err != nil {
		t.Fatalf("works error: %v", err)
	}

	var got struct {
		Work   media.Work `json:"work"`
		Embeds []string   `json:"embeds"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got.Work.Title != "Second" || len(got.Embeds) != 1 || got.Embeds[0] != "https://x.com/foo/status/1" {
		t.Errorf("got %+v", got)
	}
}

func TestWorksCommandDetailText(t *testing.T) {
	dir := writeWorks(t)

	out, err := runCLI(t, "works", "first", "--works-dir", dir)
	if err != nil {
		t.Fatalf("works error: %v", err)
	}

	want := "Title: First\nDate: 2022\nTags: a, b\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestWorksCommandMissing(t *testing.T) {
	if _, err := runCLI(t, "works", "nope", "--works-dir", t.TempDir()); err == nil {
		t.Error("expected error for missing work")
	}
}

func TestResolveCommandRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "resolve", "https://example.com/page")
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Errorf("error = %v, want unsupported provider", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "folio dev\n" {
		t.Errorf("output = %q", out)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		w    media.Work
		want string
	}{
		{media.Work{}, "-"},
		{media.Work{Year: 2024}, "2024"},
		{media.Work{Year: 2024, Month: 3}, "2024-03"},
	}
	for _, tt := range tests {
		if got := formatDate(tt.w); got != tt.want {
			t.Errorf("formatDate(%+v) = %q, want %q", tt.w, got, tt.want)
		}
	}
}

func TestWorksTable(t *testing.T) {
	got := worksTable([]media.Work{{Slug: "alpha", Title: "Alpha", Year: 2023, Tags: []string{"go"}}})
	for _, want := range []string{"SLUG", "alpha", "Alpha", "2023", "go"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}
