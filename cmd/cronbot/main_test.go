package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/flemzord/cronbot/pkg/app"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{"BOT_TOKEN", "ADMIN_CHAT_ID", "BASE_URL", "CRON_SECRET", "HTTP_ADDR"} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "cronbot dev") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigCheck_OK(t *testing.T) {
	isolate(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "42")
	t.Setenv("BASE_URL", "http://pods:3000")

	out, err := execute(t, "config", "check", "--env-file", "")
	if err != nil {
		t.Fatalf("config check: %v", err)
	}
	for _, want := range []string{
		"Configuration OK",
		"POST http://pods:3000/api/pods/snapshot every 1m0s",
		"POST http://pods:3000/api/cleanup",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCheck_MissingRequired(t *testing.T) {
	isolate(t)

	_, err := execute(t, "config", "check", "--env-file", "")
	if !errors.Is(err, app.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestStart_MissingRequiredFailsBeforeStarting(t *testing.T) {
	isolate(t)

	_, err := execute(t, "start", "--env-file", "")
	if !errors.Is(err, app.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := t.TempDir() + "/.env"
	if err := os.WriteFile(path, []byte("BOT_TOKEN=x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "init", "--output", path); err == nil {
		t.Error("expected refusal to overwrite")
	}
}
