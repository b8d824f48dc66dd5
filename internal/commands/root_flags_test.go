package fewshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/mwiater/fewshot/internal/logging"
)

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		return
	}
	_ = flag.Value.Set(flag.DefValue)
	flag.Changed = false
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// useConfig points the root command at path for the duration of the test.
func useConfig(t *testing.T, path string) {
	t.Helper()
	prevCfgFile := cfgFile
	cfgFile = path
	viper.SetConfigFile(path)
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		viper.SetConfigFile(prevCfgFile)
	})
	t.Cleanup(func() { _ = logging.Close() })
	for _, name := range []string{"debug", "logFile", "project", "dataDir"} {
		resetFlag(name)
	}
}

func TestPersistentPreRunEUsesFlagValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fewshot.log")
	configPath := writeTempConfig(t, `{"project": "from_file", "temperature": 0.5, "timeout": 30, "maxAttempts": 3}`)
	useConfig(t, configPath)

	_ = rootCmd.PersistentFlags().Set("debug", "true")
	_ = rootCmd.PersistentFlags().Set("project", "from_flag")
	_ = rootCmd.PersistentFlags().Set("logFile", logPath)

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	if currentConfig == nil || currentConfig.ConfigPath != configPath {
		t.Fatalf("expected config loaded with path %s", configPath)
	}
	if !currentConfig.Debug {
		t.Fatalf("expected debug flag to flow into config: %+v", currentConfig)
	}
	if currentConfig.ProjectName() != "from_flag" {
		t.Fatalf("expected flag to override project, got %s", currentConfig.ProjectName())
	}
	if currentConfig.Temperature != 0.5 || currentConfig.TimeoutSeconds != 30 || currentConfig.MaxAttempts != 3 {
		t.Fatalf("expected file values in config: %+v", currentConfig)
	}
	if currentConfig.LogFilePath() != logPath {
		t.Fatalf("expected log file %s, got %s", logPath, currentConfig.LogFilePath())
	}
}

func TestPersistentPreRunEInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"temperature out of range": `{"temperature": 5}`,
		"unknown provider":         `{"provider": {"type": "bard"}}`,
		"malformed json":           `{"project": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			useConfig(t, writeTempConfig(t, body))
			_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "fewshot.log"))

			if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	useConfig(t, missing)
	t.Cleanup(func() { resetFlag("config") })

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--config", missing, "show", "config"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })

	if _, err := rootCmd.ExecuteC(); err == nil {
		t.Fatalf("expected error for a missing --config file, got output %s", buf.String())
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	configPath := writeTempConfig(t, `{"logFile": "`+filepath.ToSlash(filepath.Join(t.TempDir(), "fewshot.log"))+`"}`)
	useConfig(t, configPath)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--config", configPath, "--debug", "show", "config"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	_, err := rootCmd.ExecuteC()
	if err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Config file: "+configPath) {
		t.Fatalf("expected config file path in output, got %s", out)
	}
	if !strings.Contains(out, "Debug:           true") {
		t.Fatalf("expected debug in output, got %s", out)
	}
}
