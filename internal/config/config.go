package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
	"time"
)

type Config struct {
	Env    string `yaml:"env" env:"ENV" env-default:"local"`
	OpenAI struct {
		ApiKey              string        `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		OrgId               string        `yaml:"org_id" env:"OPENAI_ORG_ID" env-default:""`
		BaseURL             string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:""`
		Model               string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo-0125"`
		Temperature         float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"1.0"`
		TopP                float32       `yaml:"top_p" env:"OPENAI_TOP_P" env-default:"1.0"`
		MaxPromptTokens     int           `yaml:"max_prompt_tokens" env:"OPENAI_MAX_PROMPT_TOKENS" env-default:"5000"`
		MaxCompletionTokens int           `yaml:"max_completion_tokens" env:"OPENAI_MAX_COMPLETION_TOKENS" env-default:"0"`
		PollInterval        time.Duration `yaml:"poll_interval" env:"OPENAI_POLL_INTERVAL" env-default:"1s"`
		RunTimeout          time.Duration `yaml:"run_timeout" env:"OPENAI_RUN_TIMEOUT" env-default:"2m"`
		MaxRetries          int           `yaml:"max_retries" env:"OPENAI_MAX_RETRIES" env-default:"3"`
		HistoryLength       int           `yaml:"history_length" env:"OPENAI_HISTORY_LENGTH" env-default:"25"`
	} `yaml:"openai"`
	Assistant struct {
		Name         string `yaml:"name" env:"ASSISTANT_NAME" env-default:"Concierge"`
		Instructions string `yaml:"instructions" env:"ASSISTANT_INSTRUCTIONS" env-default:"You are a helpful assistant."`
		// InstructionsFile, when set, replaces Instructions with the file content.
		InstructionsFile string   `yaml:"instructions_file" env:"ASSISTANT_INSTRUCTIONS_FILE" env-default:""`
		Tools            []string `yaml:"tools" env:"ASSISTANT_TOOLS" env-separator:"," env-default:"file_search"`
		SeedFiles        []string `yaml:"seed_files" env:"ASSISTANT_SEED_FILES" env-separator:","`
	} `yaml:"assistant"`
	VectorStore struct {
		Name         string `yaml:"name" env:"VECTOR_STORE_NAME" env-default:"Vector_Storage"`
		LifetimeDays int    `yaml:"lifetime_days" env:"VECTOR_STORE_LIFETIME_DAYS" env-default:"1"`
	} `yaml:"vector_store"`
	Maintenance struct {
		Enabled    bool `yaml:"enabled" env:"MAINTENANCE_ENABLED" env-default:"true"`
		MaxAgeDays int  `yaml:"max_age_days" env:"MAINTENANCE_MAX_AGE_DAYS" env-default:"2"`
		Hour       int  `yaml:"hour" env:"MAINTENANCE_HOUR" env-default:"21"`
	} `yaml:"maintenance"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
		BotName string `yaml:"bot_name" env:"TELEGRAM_BOT_NAME" env-default:""`
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID" env-default:"0"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"concierge"`
	} `yaml:"mongo"`
	Listen struct {
		BindIP  string        `yaml:"bind_ip" env:"LISTEN_BIND_IP" env-default:"127.0.0.1"`
		Port    string        `yaml:"port" env:"LISTEN_PORT" env-default:"9100"`
		ApiKey  string        `yaml:"key" env:"LISTEN_KEY" env-default:""`
		Timeout time.Duration `yaml:"timeout" env:"LISTEN_TIMEOUT" env-default:"3m"`
		// UrlSecret signs archive download links. Empty disables them.
		UrlSecret string        `yaml:"url_secret" env:"LISTEN_URL_SECRET" env-default:""`
		UrlTTL    time.Duration `yaml:"url_ttl" env:"LISTEN_URL_TTL" env-default:"1h"`
	} `yaml:"listen"`
}

// MaxAge is the age after which remote files, stores and assistants are swept.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.Maintenance.MaxAgeDays) * 24 * time.Hour
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance, err = Load(path)
		if err != nil {
			log.Fatal(err)
		}
	})
	return instance
}

// Load reads the yaml file and overrides it with the environment.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("%s; %s", err, desc)
	}
	return conf, nil
}
