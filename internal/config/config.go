package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailProvider string
	MailLabel    string
	MailFetchMax int
	MailSubject  string

	CameraSpreadsheetID string
	CameraSheet         string
	LookupSheet         string

	DictionarySpreadsheetID string
	DictionarySheet         string
	TempSheet               string
	ImportSheet             string
	ComparisonSheet         string

	MirrorSourceSpreadsheetID string
	MirrorSourceSheet         string
	MirrorTargetSpreadsheetID string
	MirrorTargetSheet         string

	SyncChunkSize  int
	SyncBudgetSec  int
	WriteChunkSize int

	WebhookURL      string
	WebhookRateRPS  int
	WebhookTimeoutS int

	DumpCronSpec   string
	MirrorCronSpec string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "camops.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", true),

		MailProvider: getEnv("MAIL_PROVIDER", "gmail"),
		MailLabel:    getEnv("MAIL_LABEL", "INBOX"),
		MailFetchMax: getEnvInt("MAIL_FETCH_MAX", 20),
		MailSubject:  getEnv("MAIL_SUBJECT", "Assets Excel Export for Google"),

		CameraSpreadsheetID: getEnv("CAMERA_SPREADSHEET_ID", ""),
		CameraSheet:         getEnv("CAMERA_SHEET", "Camera"),
		LookupSheet:         getEnv("LOOKUP_SHEET", "Look Up"),

		DictionarySpreadsheetID: getEnv("DICTIONARY_SPREADSHEET_ID", ""),
		DictionarySheet:         getEnv("DICTIONARY_SHEET", "Barcode Dictionary"),
		TempSheet:               getEnv("TEMP_SHEET", "Temp Sheet"),
		ImportSheet:             getEnv("IMPORT_SHEET", "Barcode Dictionary Import"),
		ComparisonSheet:         getEnv("COMPARISON_SHEET", "Barcode Comparison Results"),

		MirrorSourceSpreadsheetID: getEnv("MIRROR_SOURCE_SPREADSHEET_ID", ""),
		MirrorSourceSheet:         getEnv("MIRROR_SOURCE_SHEET", "Barcode Database"),
		MirrorTargetSpreadsheetID: getEnv("MIRROR_TARGET_SPREADSHEET_ID", ""),
		MirrorTargetSheet:         getEnv("MIRROR_TARGET_SHEET", "Toronto Schema"),

		SyncChunkSize:  getEnvInt("SYNC_CHUNK_SIZE", 200),
		SyncBudgetSec:  getEnvInt("SYNC_BUDGET_SEC", 240),
		WriteChunkSize: getEnvInt("WRITE_CHUNK_SIZE", 5000),

		WebhookURL:      getEnv("CHAT_WEBHOOK_URL", ""),
		WebhookRateRPS:  getEnvInt("CHAT_WEBHOOK_RATE_RPS", 1),
		WebhookTimeoutS: getEnvInt("CHAT_WEBHOOK_TIMEOUT_SEC", 15),

		DumpCronSpec:   getEnv("DUMP_CRON_SPEC", "0 2 * * *"),
		MirrorCronSpec: getEnv("MIRROR_CRON_SPEC", "0 6 * * 1"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
