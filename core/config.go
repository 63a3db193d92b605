package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		AppName          string
		Env              string
		Build            string
		SecretKey        string
		DefaultFromEmail string
		Location         *time.Location
		RollbarToken     string
		SendgridAPIKey   string
		PasswordListPath string

		Session  SessionConfig
		Survey   SurveyConfig
		Reset    ResetConfig
		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	SessionConfig struct {
		TTL time.Duration
	}

	SurveyConfig struct {
		// OpenWindow is how far back open survey instances are looked up.
		OpenWindow time.Duration
	}

	ResetConfig struct {
		CodeTTL  time.Duration
		Cooldown time.Duration
	}

	ServerConfig struct {
		Host              string
		DebugHost         string
		ShutdownTimeout   time.Duration
		StrictStatusCodes bool
		DisableReqLogs    bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          string
		User          string
		Password      string
		Name          string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
	}
)

func (dbConf DatabaseConfig) Address() string {
	return net.JoinHostPort(dbConf.Host, dbConf.Port)
}

// NewConfig loads the application config from defaults, an optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "ICBA")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "u6w#8re)k1o=*q2c!x^a$9gd+ft&l0m3py(5hnbz@s7vj4ie_")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("passwordListPath", filepath.Join("assets", "common-passwords.txt.gz"))

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("survey.openWindow", 7*24*time.Hour)
	v.SetDefault("reset.codeTTL", time.Hour)
	v.SetDefault("reset.cooldown", time.Minute)

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.strictStatusCodes", false)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "icba")
	v.SetDefault("database.password", "icba")
	v.SetDefault("database.name", "icba")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "icba.db")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix("ICBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		log.Fatal(fmt.Errorf("config.timezone: %v", err))
	}

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		Location:         loc,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		PasswordListPath: v.GetString("passwordListPath"),
		Session: SessionConfig{
			TTL: v.GetDuration("session.ttl"),
		},
		Survey: SurveyConfig{
			OpenWindow: v.GetDuration("survey.openWindow"),
		},
		Reset: ResetConfig{
			CodeTTL:  v.GetDuration("reset.codeTTL"),
			Cooldown: v.GetDuration("reset.cooldown"),
		},
		Server: ServerConfig{
			Host:              v.GetString("server.host"),
			DebugHost:         v.GetString("server.debugHost"),
			ShutdownTimeout:   v.GetDuration("server.shutdownTimeout"),
			StrictStatusCodes: v.GetBool("server.strictStatusCodes"),
			DisableReqLogs:    v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			Name:          v.GetString("database.name"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Path:          v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
}

// NewTestConfig returns a Config suited for tests: sqlite3, no request logs, UTC schedules.
func NewTestConfig() *Config {
	return &Config{
		Debug:            true,
		TestMode:         true,
		AppName:          "ICBA",
		Env:              "TEST",
		Build:            "test",
		SecretKey:        "test-secret",
		DefaultFromEmail: "noreply@test.icba",
		Location:         time.UTC,
		Session:          SessionConfig{TTL: 24 * time.Hour},
		Survey:           SurveyConfig{OpenWindow: 7 * 24 * time.Hour},
		Reset:            ResetConfig{CodeTTL: time.Hour, Cooldown: time.Minute},
		Server:           ServerConfig{ShutdownTimeout: time.Second, DisableReqLogs: true},
		Database:         DatabaseConfig{Engine: "sqlite3"},
	}
}
