package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/models"
)

var (
	DB  *gorm.DB
	App = DefaultSettings()
)

type Settings struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBTimeZone  string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string
	GinMode     string
	LogLevel    string

	FormsPerMin   int
	FormsBurst    int
	AnswersPerMin int
	AnswersBurst  int
}

func DefaultSettings() Settings {
	return Settings{
		Port:          "8080",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBSSLMode:     "disable",
		DBTimeZone:    "UTC",
		JWTTTL:        24 * time.Hour,
		CORSOrigins:   []string{"http://localhost:5173"},
		GinMode:       "debug",
		LogLevel:      "info",
		FormsPerMin:   10,
		FormsBurst:    5,
		AnswersPerMin: 60,
		AnswersBurst:  20,
	}
}

// LoadEnv reads .env into the process environment. It runs before the logger
// exists, so a missing file is returned for the caller to log.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// LoadSettings builds Settings from the environment on top of the defaults.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()

	s.Port = envString("PORT", s.Port)
	s.DatabaseURL = os.Getenv("DATABASE_URL")
	s.DBHost = envString("DB_HOST", s.DBHost)
	s.DBPort = envString("DB_PORT", s.DBPort)
	s.DBUser = os.Getenv("DB_USER")
	s.DBPassword = os.Getenv("DB_PASSWORD")
	s.DBName = os.Getenv("DB_NAME")
	s.DBSSLMode = envString("DB_SSLMODE", s.DBSSLMode)
	s.DBTimeZone = envString("DB_TIMEZONE", s.DBTimeZone)
	s.JWTSecret = os.Getenv("JWT_SECRET")
	s.GinMode = envString("GIN_MODE", s.GinMode)
	s.LogLevel = envString("LOG_LEVEL", s.LogLevel)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		s.CORSOrigins = splitList(v)
	}

	var err error
	if v := os.Getenv("JWT_TTL"); v != "" {
		if s.JWTTTL, err = time.ParseDuration(v); err != nil {
			return s, fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
	}
	if s.FormsPerMin, err = envInt("RATE_FORMS_PER_MIN", s.FormsPerMin); err != nil {
		return s, err
	}
	if s.FormsBurst, err = envInt("RATE_FORMS_BURST", s.FormsBurst); err != nil {
		return s, err
	}
	if s.AnswersPerMin, err = envInt("RATE_ANSWERS_PER_MIN", s.AnswersPerMin); err != nil {
		return s, err
	}
	if s.AnswersBurst, err = envInt("RATE_ANSWERS_BURST", s.AnswersBurst); err != nil {
		return s, err
	}

	if s.JWTSecret == "" {
		return s, fmt.Errorf("JWT_SECRET is required")
	}
	return s, nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN from the DB_* parts.
func (s Settings) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimeZone)
}

// ConnectDB opens the PostgreSQL connection and migrates the schema.
func ConnectDB() {
	db, err := gorm.Open(postgres.Open(App.DSN()), GormConfig())
	if err != nil {
		Log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		Log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		Log.Fatal("failed to migrate", zap.Error(err))
	}

	DB = db
	Log.Info("connected to PostgreSQL & migrated successfully",
		zap.String("host", App.DBHost), zap.String("db", App.DBName))
}

// GormConfig stores timestamps in UTC and maps driver constraint errors to
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates every table, including the cascading foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
