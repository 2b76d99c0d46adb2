package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	BotToken string `env:"BOT_TOKEN,required"`

	// Completion API
	ZenMuxAPIKey        string   `env:"ZENMUX_API_KEY"`
	ZenMuxAPIKeys       []string `env:"ZENMUX_API_KEYS" envSeparator:","`
	ZenMuxBaseURL       string   `env:"ZENMUX_BASE_URL" envDefault:"https://zenmux.ai/api/v1"`
	ModelName           string   `env:"MODEL_NAME" envDefault:"gpt-4o"`
	Temperature         float32  `env:"TEMPERATURE" envDefault:"0.6"`
	MaxCompletionTokens int      `env:"MAX_COMPLETION_TOKENS" envDefault:"1024"`

	// Dialogue history
	DialogueDBPath  string `env:"DIALOGUE_DB_PATH" envDefault:"data/dialogue.db"`
	HistoryMaxTurns int    `env:"HISTORY_MAX_TURNS" envDefault:"12"`
	HistoryMaxChars int    `env:"HISTORY_MAX_CHARS" envDefault:"0"`

	// Prompts and filtering
	SystemPromptPath string   `env:"SYSTEM_PROMPT_PATH"`
	StopWords        []string `env:"STOP_WORDS" envSeparator:","`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// APIKeys returns the deduplicated key pool, ZENMUX_API_KEY first.
func (c *Config) APIKeys() []string {
	keys := make([]string, 0, len(c.ZenMuxAPIKeys)+1)
	add := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" {
			return
		}
		for _, e := range keys {
			if e == k {
				return
			}
		}
		keys = append(keys, k)
	}
	add(c.ZenMuxAPIKey)
	for _, k := range c.ZenMuxAPIKeys {
		add(k)
	}
	return keys
}
