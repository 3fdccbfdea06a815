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
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration

		AccessTokenExpirationDelta  time.Duration
		RefreshTokenExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string
		UploadDir        string
		CORSOrigins      []string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the configuration from the environment (and config/.env.<env> if it exists).
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	wd := os.Getenv("WORK_DIR")
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			log.Fatalf("config.os.Getwd(): %v", err)
		}
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "SMKN 4 Padalarang")
	v.SetDefault("secretKey", "x9$k1q)v7#b2*c!d4@f+eh6%=jm0n&p8r3s5t_uw^yz(ag")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("uploadDir", filepath.Join(wd, "uploads"))
	v.SetDefault("corsOrigins", "http://localhost:3000,https://smkn-4-padalarang.vercel.app")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverReadTimeout", 5*time.Second)
	v.SetDefault("serverWriteTimeout", 5*time.Second)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("accessTokenExpirationDelta", 30*time.Minute)
	v.SetDefault("refreshTokenExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "sekolah")
	v.SetDefault("dbUser", "sekolah")
	v.SetDefault("dbPassword", "sekolah")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", env != "PROD")

	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	fromEmail, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.mail.ParseAddress(%s): %v", v.GetString("defaultFromEmail"), err)
	}

	return &Config{
		Env:      env,
		Build:    v.GetString("build"),
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		WorkDir:  wd,

		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail: *fromEmail,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		UploadDir:        v.GetString("uploadDir"),
		CORSOrigins:      splitList(v.GetString("corsOrigins")),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                        v.GetString("serverHost"),
			DebugHost:                   v.GetString("serverDebugHost"),
			ReadTimeout:                 v.GetDuration("serverReadTimeout"),
			WriteTimeout:                v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout:             v.GetDuration("serverShutdownTimeout"),
			AccessTokenExpirationDelta:  v.GetDuration("accessTokenExpirationDelta"),
			RefreshTokenExpirationDelta: v.GetDuration("refreshTokenExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no .env, no network services.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "SMKN 4 Padalarang",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "SMKN 4 Padalarang", Address: "noreply@localhost"},
		UploadDir:        filepath.Join(os.TempDir(), "smkn4-uploads"),

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: ServerConfig{
			AccessTokenExpirationDelta:  30 * time.Minute,
			RefreshTokenExpirationDelta: 7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{Engine: "memory"},
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
