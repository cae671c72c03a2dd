package install

import (
	"encoding/json"
	"os"
	"path/filepath"
	"smcp/internal/chat"
	"smcp/internal/global"
	"strings"
	"testing"
)

func TestRenderUnit(t *testing.T) {
	unit := RenderUnit("/opt/smcp", "/srv/smcp.json", "/srv/state")

	for _, want := range []string{
		"ExecStart=/opt/smcp listen --config /srv/smcp.json",
		"ReadWritePaths=/srv/state",
		"Type=notify",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
	if strings.Contains(unit, "$executableFilePath") || strings.Contains(unit, "$configFilePath") {
		t.Errorf("unit has unsubstituted placeholders:\n%s", unit)
	}
}

func TestCreateTemplateConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smcp.json")

	err := CreateTemplateConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded global.ChatConfig
	err = json.Unmarshal(raw, &decoded)
	if err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}

	// Template must pass the daemon's own config parsing
	loaded, err := chat.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	conf, err := chat.NewDaemonConf(loaded)
	if err != nil {
		t.Fatalf("NewDaemonConf: %v", err)
	}
	if conf.Endpoint != "239.0.0.1:4000" {
		t.Errorf("unexpected endpoint %q", conf.Endpoint)
	}
	if conf.ReplayExpiry != global.DefaultReplayExpiry {
		t.Errorf("unexpected replay expiry %v", conf.ReplayExpiry)
	}
}

func TestCreateTemplateConfigRequiresPath(t *testing.T) {
	err := CreateTemplateConfig("")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}
