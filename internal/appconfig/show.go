package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary followed by a full dump.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Data Dir:        %s\n", cfg.DataRoot())
	fmt.Fprintf(out, "  Project:         %s\n", cfg.ProjectName())
	fmt.Fprintf(out, "  Provider:        %s\n", cfg.ProviderType())
	if url := cfg.ProviderURL(); url != "" {
		fmt.Fprintf(out, "  Provider URL:    %s\n", url)
	}
	fmt.Fprintf(out, "  Dataset Driver:  %s\n", cfg.DatasetDriver())
	fmt.Fprintf(out, "  Cache Dir:       %s\n", cfg.CacheDir())
	fmt.Fprintf(out, "  Temperature:     %g\n", cfg.Temperature)
	fmt.Fprintf(out, "  Max Tokens:      %d\n", cfg.MaxOutputTokens())
	fmt.Fprintf(out, "  Stream:          %v\n", cfg.Streaming())
	fmt.Fprintf(out, "  Retry Delay:     %s\n", cfg.RetryDelay())
	if cfg.MaxAttempts > 0 {
		fmt.Fprintf(out, "  Max Attempts:    %d\n", cfg.MaxAttempts)
	} else {
		fmt.Fprintln(out, "  Max Attempts:    unlimited")
	}
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  OpenAI API Key:  %s\n", maskSecret(cfg.Secrets.OpenAIAPIKey))

	if cfg.Debug {
		redacted := *cfg
		redacted.Secrets = Secrets{}
		fmt.Fprintln(out)
		pp.Fprintln(out, redacted)
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:3] + "..." + s[len(s)-4:]
}
