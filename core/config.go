package core

import (
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
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		TimeZone     string // reference time zone of dashboards & history date bounds

		Server   ServerConfig
		Database DatabaseConfig
		Model    ModelConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		AllowOrigins              []string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		CaptchaEnabled            bool
		CaptchaTTL                time.Duration
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

	ModelConfig struct {
		Path string
	}

	RedisConfig struct {
		Address  string // empty: in-process session store
		Password string
		DB       int
	}
)

func (dbConf DatabaseConfig) Address() string {
	return net.JoinHostPort(dbConf.Host, dbConf.Port)
}

// Location returns the reference time zone, falling back to UTC.
func (conf *Config) Location() *time.Location {
	if conf.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Alama")
	v.SetDefault("secretKey", "x3v7-lmq)a9c$+12=hp&nbrw4(k!z)#*f8(#ud5j^$tegs6akr")
	v.SetDefault("timeZone", "UTC")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.allowOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.captchaEnabled", true)
	v.SetDefault("server.captchaTTL", 5*time.Minute)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "alama")
	v.SetDefault("database.user", "alama")
	v.SetDefault("database.password", "alama")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("model.path", filepath.Join("assets", "models", "student_model.yaml"))
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
		v.SetDefault("server.captchaEnabled", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		TimeZone:     v.GetString("timeZone"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			AllowOrigins:              v.GetStringSlice("server.allowOrigins"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			CaptchaEnabled:            v.GetBool("server.captchaEnabled"),
			CaptchaTTL:                v.GetDuration("server.captchaTTL"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Model: ModelConfig{
			Path: v.GetString("model.path"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Alama",
		SecretKey: "test-secret",
		TimeZone:  "UTC",
		Server: ServerConfig{
			AllowOrigins:              []string{"*"},
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
			CaptchaTTL:                5 * time.Minute,
		},
		Database: DatabaseConfig{Engine: "memory"},
	}
}
