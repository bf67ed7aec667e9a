package config

import (
	"os"
	"time"
)

type Config struct {
	ListenAddr string

	DBDriver string
	DBDSN    string

	UploadDir   string
	CommandsDir string

	// understanding service
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration
}

func Load() Config {
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	// DSN demo (mysql):
	// app:apppass@tcp(127.0.0.1:3306)/docsift?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "data/docsift.db"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}

	commandsDir := os.Getenv("COMMANDS_DIR")
	if commandsDir == "" {
		commandsDir = "commands"
	}

	aiBaseURL := os.Getenv("AI_BASE_URL")
	if aiBaseURL == "" {
		aiBaseURL = "https://api.openai.com/v1"
	}

	aiModel := os.Getenv("AI_MODEL")
	if aiModel == "" {
		aiModel = "gpt-4o-mini"
	}

	aiTimeout := 120 * time.Second
	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			aiTimeout = d
		}
	}

	return Config{
		ListenAddr: listenAddr,

		DBDriver: driver,
		DBDSN:    dsn,

		UploadDir:   uploadDir,
		CommandsDir: commandsDir,

		AIBaseURL: aiBaseURL,
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   aiModel,
		AITimeout: aiTimeout,
	}
}
