package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"preprocessor/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceDir  string
	targetDir  string
	stateDir   string
	api        *testsupport.LabelAPI
}

func setupCLITestEnv(t *testing.T, labels map[string]string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PREPROCESSOR_API_URL", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "preprocessor.toml"),
		sourceDir:  filepath.Join(base, "raw_images"),
		targetDir:  filepath.Join(base, "dataset"),
		stateDir:   filepath.Join(base, "state"),
		api:        testsupport.NewLabelAPI(t, labels),
	}
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	writeTestConfig(t, env)
	return env
}

func (e *cliTestEnv) addImages(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		writeImage(t, filepath.Join(e.sourceDir, name))
	}
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
source_dir = %q
state_dir = %q

[api]
url = %q
max_retries = 0

[image]
width = 8
height = 8

[preflight]
min_free_mib = 0
`, env.sourceDir, env.stateDir, env.api.URL())
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

func writeImage(t *testing.T, path string) {
	t.Helper()
	testsupport.WritePNG(t, path, 24, 16)
}
