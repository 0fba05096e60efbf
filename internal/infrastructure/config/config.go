package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/skillscout/internal/util"
)

// Embeddings holds the embedding collaborator configuration.
type Embeddings struct {
	Enabled  bool   `envconfig:"SKILLSCOUT_EMBEDDINGS_ENABLED" default:"true"`
	Endpoint string `envconfig:"SKILLSCOUT_OLLAMA_ENDPOINT" default:"http://localhost:11434"`
	Model    string `envconfig:"SKILLSCOUT_OLLAMA_MODEL" default:"nomic-embed-text"`
}

// Discovery holds configuration for the discovery pipeline.
type Discovery struct {
	CorpusRoot     string  `envconfig:"SKILLSCOUT_CORPUS_ROOT"`
	StatePath      string  `envconfig:"SKILLSCOUT_STATE_PATH"`
	SkillsDir      string  `envconfig:"SKILLSCOUT_SKILLS_DIR"`
	DatabaseURL    string  `envconfig:"SKILLSCOUT_DATABASE_URL"`
	NoiseThreshold float64 `envconfig:"SKILLSCOUT_NOISE_THRESHOLD" default:"0.8"`
	ClusterMinPts  int     `envconfig:"SKILLSCOUT_CLUSTER_MIN_PTS" default:"3"`
	DedupThreshold float64 `envconfig:"SKILLSCOUT_DEDUP_THRESHOLD" default:"0.82"`
	Embeddings     Embeddings
}

// LoadDiscovery loads discovery configuration from environment variables,
// filling in path defaults that depend on the home and data directories.
func LoadDiscovery() (*Discovery, error) {
	var cfg Discovery
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.CorpusRoot == "" || cfg.SkillsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		if cfg.CorpusRoot == "" {
			cfg.CorpusRoot = filepath.Join(home, ".claude", "projects")
		}
		if cfg.SkillsDir == "" {
			cfg.SkillsDir = filepath.Join(home, ".claude", "skills")
		}
	}

	if cfg.StatePath == "" || cfg.DatabaseURL == "" {
		dataDir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		if cfg.StatePath == "" {
			cfg.StatePath = filepath.Join(dataDir, "scan-state.json")
		}
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "file:" + filepath.Join(dataDir, "skillscout.db")
		}
	}

	return &cfg, nil
}
