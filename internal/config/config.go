package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int
	DataPath    string
	UploadPath  string
	OutputPath  string
	DBPath      string
	CORSOrigins []string
	Concurrency int

	Providers ProviderConfig
}

// ProviderConfig carries the credentials and endpoints for the speech
// providers. Values come from the environment, optionally overridden by
// a providers.yaml file next to the data directory.
type ProviderConfig struct {
	WhisperURL      string `yaml:"whisper_url"`
	WhisperAPIKey   string `yaml:"whisper_api_key"`
	AssemblyAIKey   string `yaml:"assemblyai_api_key"`
	DeepgramAPIKey  string `yaml:"deepgram_api_key"`
	GoogleAPIKey    string `yaml:"google_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	CorrectionModel string `yaml:"correction_model"`
}

func Load() *Config {
	// Optional .env for local development. Missing file is fine.
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	concurrency, _ := strconv.Atoi(getEnv("TRANSCRIBE_CONCURRENCY", "3"))
	if concurrency < 1 {
		concurrency = 1
	}

	cfg := &Config{
		Port:        port,
		DataPath:    dataPath,
		UploadPath:  getEnv("UPLOAD_PATH", dataPath+"/uploads"),
		OutputPath:  getEnv("OUTPUT_PATH", dataPath+"/transcripts"),
		DBPath:      getEnv("DB_PATH", dataPath+"/audioscribe.db"),
		CORSOrigins: corsOrigins,
		Concurrency: concurrency,
		Providers: ProviderConfig{
			WhisperURL:      os.Getenv("WHISPER_URL"),
			WhisperAPIKey:   os.Getenv("OPENAI_API_KEY"),
			AssemblyAIKey:   os.Getenv("ASSEMBLYAI_API_KEY"),
			DeepgramAPIKey:  os.Getenv("DEEPGRAM_API_KEY"),
			GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			CorrectionModel: os.Getenv("CORRECTION_MODEL"),
		},
	}

	// providers.yaml overrides env credentials when present
	providersFile := getEnv("PROVIDERS_FILE", dataPath+"/providers.yaml")
	if err := cfg.loadProvidersFile(providersFile); err != nil {
		log.Printf("[config] %v", err)
	}

	return cfg
}

func (c *Config) loadProvidersFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read providers file: %w", err)
	}

	var fileCfg ProviderConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse providers file %s: %w", path, err)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Providers.WhisperURL, fileCfg.WhisperURL)
	override(&c.Providers.WhisperAPIKey, fileCfg.WhisperAPIKey)
	override(&c.Providers.AssemblyAIKey, fileCfg.AssemblyAIKey)
	override(&c.Providers.DeepgramAPIKey, fileCfg.DeepgramAPIKey)
	override(&c.Providers.GoogleAPIKey, fileCfg.GoogleAPIKey)
	override(&c.Providers.OpenAIAPIKey, fileCfg.OpenAIAPIKey)
	override(&c.Providers.CorrectionModel, fileCfg.CorrectionModel)

	log.Printf("[config] provider settings loaded from %s", path)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
