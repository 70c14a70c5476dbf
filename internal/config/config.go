package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr  string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath    string     `env:"DB_PATH" envDefault:"data/necrobingo.db"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir    string     `env:"SPA_DIR" envDefault:"../web/dist"`
	PublicURL string     `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	// Biographical data provider endpoints.
	WikipediaAPIURL string `env:"WIKIPEDIA_API_URL" envDefault:"https://fr.wikipedia.org/w/api.php"`
	WikidataAPIURL  string `env:"WIKIDATA_API_URL" envDefault:"https://www.wikidata.org/w/api.php"`
	WikiLanguage    string `env:"WIKI_LANGUAGE" envDefault:"fr"`

	// RedisURL is optional; when empty the search cache is disabled.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"350ms"`
	SearchLimit    int           `env:"SEARCH_LIMIT" envDefault:"8"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
