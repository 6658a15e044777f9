package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookterm/config"
	"bookterm/epub"
)

func writeBook(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func twoChapterBook(t *testing.T) string {
	return writeBook(t, map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Print</dc:title></metadata>
  <manifest>
    <item id="a" href="a.xhtml" media-type="application/xhtml+xml"/>
    <item id="b" href="b.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="a"/><itemref idref="b"/></spine>
</package>`,
		"a.xhtml": `<html><body><h1>Intro</h1><p>Hello there.</p></body></html>`,
		"b.xhtml": `<html><body><p>Bye.</p></body></html>`,
	})
}

func TestRunPrint(t *testing.T) {
	book, err := epub.Open(twoChapterBook(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	var buf bytes.Buffer
	if err := runPrint(&buf, book, config.Default(), nil); err != nil {
		t.Fatalf("runPrint: %v", err)
	}
	expected := "= Intro\n\nHello there.\n\nBye.\n"
	if got := buf.String(); got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	if err := cmd.Flags().Set("width", "50"); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd, options{width: 50, noState: true})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Reader.Width != 50 {
		t.Errorf("width: got %d, expected 50", cfg.Reader.Width)
	}
	if cfg.State.Enabled {
		t.Error("--no-state should disable saved positions")
	}
	if cfg.Reader.Language != "en_US" {
		t.Errorf("unset flags should keep defaults, got language %q", cfg.Reader.Language)
	}
}

func TestLoadConfigCommandFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "bookterm"), 0o755); err != nil {
		t.Fatal(err)
	}
	rc := filepath.Join(dir, "bookterm", "bookrc")
	if err := os.WriteFile(rc, []byte("set width 40\nset bogus 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadConfig(newRootCmd(), options{})
	if err == nil {
		t.Fatal("expected an error for the unknown setting")
	}
	if !strings.Contains(err.Error(), "bookrc:2:") {
		t.Errorf("error should name the file and line, got %q", err)
	}
}

func TestLoadConfigInvalidWidth(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	if err := cmd.Flags().Set("width", "0"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, options{width: 0}); err == nil {
		t.Error("expected an error for width 0")
	}
}

func TestInitConfig(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--init-config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != config.DefaultTOML() {
		t.Error("--init-config should print the default config")
	}
}

func TestMissingFileArgument(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error without a FILE argument")
	}
}
