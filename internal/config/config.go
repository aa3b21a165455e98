package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file read when none is given and it exists in
// the working directory.
const DefaultFile = "gamedat-translator.toml"

type Config struct {
	Game        GameConfig        `toml:"game"`
	Translation TranslationConfig `toml:"translation"`
	Gemini      GeminiConfig      `toml:"gemini"`
	OpenAI      OpenAIConfig      `toml:"openai"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Neo4j       Neo4jConfig       `toml:"neo4j"`
	Glossary    GlossaryConfig    `toml:"glossary"`
	LogLevel    string            `toml:"log_level"`
}

type GameConfig struct {
	Dir            string `toml:"dir"`
	TranslationDir string `toml:"translation_dir"`
	BackupSuffix   string `toml:"backup_suffix"`
}

type TranslationConfig struct {
	SourceLang string `toml:"source_lang"`
	TargetLang string `toml:"target_lang"`
	Provider   string `toml:"provider"`
	DelayMS    int    `toml:"delay_ms"`
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// PostgresConfig enables the persistent translation cache when URL is set.
type PostgresConfig struct {
	URL string `toml:"url"`
}

// Neo4jConfig enables the graph glossary when URI is set.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type GlossaryConfig struct {
	File string `toml:"file"`
}

// Delay returns the minimum pause between provider calls.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Translation.DelayMS) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Game: GameConfig{
			Dir:          ".",
			BackupSuffix: ".bak",
		},
		Translation: TranslationConfig{
			SourceLang: "en",
			TargetLang: "es",
			Provider:   "google",
			DelayMS:    500,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Neo4j: Neo4jConfig{
			User: "neo4j",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the TOML file at path, a
// .env file in the working directory and the environment, each overriding
// the previous. An empty path reads DefaultFile if it exists. The second
// result reports whether a .env file was loaded.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
	}

	dotenv := godotenv.Load() == nil
	cfg.applyEnv()
	return cfg, dotenv, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Game.Dir = getEnv("GAME_DIR", c.Game.Dir)
	c.Game.TranslationDir = getEnv("TRANSLATION_DIR", c.Game.TranslationDir)
	c.Game.BackupSuffix = getEnv("BACKUP_SUFFIX", c.Game.BackupSuffix)

	c.Translation.SourceLang = getEnv("SOURCE_LANG", c.Translation.SourceLang)
	c.Translation.TargetLang = getEnv("TARGET_LANG", c.Translation.TargetLang)
	c.Translation.Provider = getEnv("PROVIDER", c.Translation.Provider)
	c.Translation.DelayMS = getEnvInt("TRANSLATE_DELAY_MS", c.Translation.DelayMS)

	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("TRANSLATION_MODEL", c.Gemini.Model)

	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)

	c.Postgres.URL = getEnv("DATABASE_URL", c.Postgres.URL)

	c.Neo4j.URI = getEnv("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = getEnv("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = getEnv("NEO4J_PASSWORD", c.Neo4j.Password)

	c.Glossary.File = getEnv("GLOSSARY_FILE", c.Glossary.File)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
