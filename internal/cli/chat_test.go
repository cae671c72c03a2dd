package cli

import (
	"os"
	"path/filepath"
	"smcp/internal/global"
	"smcp/internal/install"
	"testing"
)

func writeTemplateConfig(t *testing.T) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "smcp.json")
	err := install.CreateTemplateConfig(path)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	return
}

func TestBuildParticipantConfigOverrides(t *testing.T) {
	saved := global.Verbosity
	t.Cleanup(func() { global.Verbosity = saved })

	path := writeTemplateConfig(t)
	fs, opts := newParticipantFlags("chat")
	err := fs.Parse([]string{"-c", path, "-u", "bob", "--endpoint", "239.9.9.9:7000", "-i", "eth1", "-v", "4"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	jsonCfg, conf, err := buildParticipantConfig(fs, opts, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conf.Username != "bob" || jsonCfg.Username != "bob" {
		t.Errorf("username override not applied: %q", conf.Username)
	}
	if conf.Endpoint != "239.9.9.9:7000" {
		t.Errorf("endpoint override not applied: %q", conf.Endpoint)
	}
	if conf.Interface != "eth1" {
		t.Errorf("interface override not applied: %q", conf.Interface)
	}
	if conf.Listen {
		t.Error("chat mode must not be listen-only")
	}
	if !conf.Stdout {
		t.Error("chat mode always prints to stdout")
	}
	if global.Verbosity != 4 {
		t.Errorf("command line verbosity should win, got %d", global.Verbosity)
	}
}

func TestBuildParticipantConfigListenKeepsConfigLevel(t *testing.T) {
	saved := global.Verbosity
	t.Cleanup(func() { global.Verbosity = saved })

	path := writeTemplateConfig(t)
	fs, opts := newParticipantFlags("listen")
	err := fs.Parse([]string{"--config", path})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	jsonCfg, conf, err := buildParticipantConfig(fs, opts, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conf.Listen {
		t.Error("listen mode flag not set")
	}
	if conf.Stdout != jsonCfg.Outputs.Stdout {
		t.Errorf("listen mode should keep configured stdout setting")
	}
	if conf.Username != "alice" {
		t.Errorf("expected config username, got %q", conf.Username)
	}
	if global.Verbosity != jsonCfg.Logging.Level {
		t.Errorf("expected config log level %d, got %d", jsonCfg.Logging.Level, global.Verbosity)
	}
}

func TestBuildParticipantConfigMissingFile(t *testing.T) {
	fs, opts := newParticipantFlags("chat")
	err := fs.Parse([]string{"-c", filepath.Join(t.TempDir(), "absent.json")})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, _, err = buildParticipantConfig(fs, opts, false)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "smcp.log")

	file, err := openLogFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = file.Write([]byte("line\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	file.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "line\n" {
		t.Errorf("unexpected content %q", data)
	}
}
