package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SubmitRateLimit           float64 // requests per second, per client IP
		SubmitBurst               int
	}

	AdminConfig struct {
		Username     string
		PasswordHash string // bcrypt
		Email        string
	}

	StoreConfig struct {
		Engine  string // csv | memory | postgres | sqlite
		DataDir string
	}

	DatabaseConfig struct {
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only; relative to the data dir
	}

	ReportConfig struct {
		TopN             int
		DigestSchedule   string // cron spec; empty disables the digest
		DigestRecipients []string
	}

	EmailConfig struct {
		DefaultFrom    mail.Address
		SendgridAPIKey string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Admin    AdminConfig
		Store    StoreConfig
		Database DatabaseConfig
		Report   ReportConfig
		Email    EmailConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the app configuration from the environment and `config/.env.<env>`.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Faculty Preference")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "k3y-9xw)fdz&uoq2(h!t)#*a7(#pg4h^$cegm8emy")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.submitRateLimit", 1.0)
	conf.SetDefault("server.submitBurst", 5)

	conf.SetDefault("admin.username", "admin")
	conf.SetDefault("admin.passwordHash", "")
	conf.SetDefault("admin.email", "")

	conf.SetDefault("store.engine", "csv")
	conf.SetDefault("store.dataDir", "data")

	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "facultypref")
	conf.SetDefault("database.user", "facultypref")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.path", "facultypref.db")

	conf.SetDefault("report.topN", 0)
	conf.SetDefault("report.digestSchedule", "")
	conf.SetDefault("report.digestRecipients", "")

	conf.SetDefault("email.defaultFrom", "noreply@localhost")
	conf.SetDefault("email.sendgridApiKey", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := ProjectRoot()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	from, err := mail.ParseAddress(conf.GetString("email.defaultFrom"))
	if err != nil {
		log.Fatalf("config.email.defaultFrom: %v", err)
	}

	dataDir := conf.GetString("store.dataDir")
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(workDir, dataDir)
	}
	dbPath := conf.GetString("database.path")
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(dataDir, dbPath)
	}

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      workDir,
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			SubmitRateLimit:           conf.GetFloat64("server.submitRateLimit"),
			SubmitBurst:               conf.GetInt("server.submitBurst"),
		},
		Admin: AdminConfig{
			Username:     CleanString(conf.GetString("admin.username"), true /* lower */),
			PasswordHash: conf.GetString("admin.passwordHash"),
			Email:        conf.GetString("admin.email"),
		},
		Store: StoreConfig{
			Engine:  CleanString(conf.GetString("store.engine"), true /* lower */),
			DataDir: dataDir,
		},
		Database: DatabaseConfig{
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
			Path:          dbPath,
		},
		Report: ReportConfig{
			TopN:             conf.GetInt("report.topN"),
			DigestSchedule:   conf.GetString("report.digestSchedule"),
			DigestRecipients: SplitList(conf.GetString("report.digestRecipients")),
		},
		Email: EmailConfig{
			DefaultFrom:    *from,
			SendgridAPIKey: conf.GetString("email.sendgridApiKey"),
		},
	}
}
