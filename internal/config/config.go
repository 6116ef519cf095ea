package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Line   LineConfig
	Notion NotionConfig
	Gemini GeminiConfig
	Goals  GoalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type LineConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
}

type NotionConfig struct {
	Token string
	// Sources maps a stable source key to its Notion database ID.
	// An empty ID means the source is not configured and is skipped.
	Sources map[string]string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GoalConfig struct {
	MortgagePrincipal float64
	BTCGoal           float64
	DailyCalories     int
	DailyProtein      int
	DailyCarbs        int
	DailyFat          int
}

// SourceKeys lists every Notion source the bot can read from. The keys
// double as env var names so deployments stay compatible with the
// original sheet of database IDs.
var SourceKeys = []string{
	"DB_TW_STOCK",
	"DB_US_STOCK",
	"DB_CRYPTO",
	"DB_GOLD",
	"PAY_LOSS_DB_ID",
	"DB_SNAPSHOT",
	"TRANSACTIONS_DB_ID",
	"BUDGET_DB_ID",
	"INCOME_DB_ID",
	"DB_ACCOUNT",
	"DB_MORTGAGE",
	"DIET_DB_ID",
	"FLASH_DB_ID",
	"LITERATURE_DB_ID",
	"PERMAMENT_DB_ID",
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	sources := make(map[string]string, len(SourceKeys))
	for _, key := range SourceKeys {
		sources[key] = getEnv(key, "")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Line: LineConfig{
			ChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
			ChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		},
		Notion: NotionConfig{
			Token:   getEnv("NOTION_TOKEN", ""),
			Sources: sources,
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Goals: GoalConfig{
			MortgagePrincipal: getEnvAsFloat("LOAN_TOTAL_PRINCIPAL", 5330000),
			BTCGoal:           getEnvAsFloat("BTC_GOAL", 1.0),
			DailyCalories:     getEnvAsInt("DAILY_TARGET_CALORIES", 2300),
			DailyProtein:      getEnvAsInt("DAILY_TARGET_PROTEIN", 100),
			DailyCarbs:        getEnvAsInt("DAILY_TARGET_CARBS", 280),
			DailyFat:          getEnvAsInt("DAILY_TARGET_FAT", 75),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
