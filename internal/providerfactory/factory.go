// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"

	"github.com/mwiater/fewshot/internal/appconfig"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/metrics"
	"github.com/mwiater/fewshot/internal/providers"
	"github.com/mwiater/fewshot/internal/providers/ollama"
	"github.com/mwiater/fewshot/internal/providers/openai"
)

// NewChatProvider selects and configures the chat provider named by the
// configuration. When an aggregator is supplied the provider is wrapped with
// metrics collection.
func NewChatProvider(cfg *appconfig.Config, aggregator *metrics.Aggregator) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	var provider providers.ChatProvider
	switch cfg.ProviderType() {
	case appconfig.ProviderOpenAI:
		p, err := openai.New(cfg)
		if err != nil {
			logging.LogEvent("OpenAI provider unavailable: %v", err)
			return nil, err
		}
		provider = p
	case appconfig.ProviderOllama:
		provider = ollama.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Provider.Type)
	}
	logging.LogEvent("%s provider ready: url=%q", provider.Name(), cfg.ProviderURL())

	if aggregator != nil {
		provider = metrics.NewProvider(provider, aggregator)
	}

	return provider, nil
}
