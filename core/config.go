package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database engines
const (
	EnginePostgres  = "postgres"
	EngineFirestore = "firestore"
	EngineMemory    = "memory"
)

// Auth providers
const (
	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"
)

type (
	Config struct {
		Env                       string
		Build                     string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromName           string
		DefaultFromAddress        string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string

		Server    ServerConfig
		Database  DatabaseConfig
		Firestore FirestoreConfig
		Auth      AuthConfig
		Scheduler SchedulerConfig
		RateLimit RateLimitConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	FirestoreConfig struct {
		ProjectID       string
		CredentialsFile string
	}

	AuthConfig struct {
		Provider                string
		FirebaseCredentialsFile string
	}

	SchedulerConfig struct {
		Enabled       bool
		LicenseSpec   string
		OverdueSpec   string
		NoticeWindow  time.Duration
		ExpiringAhead time.Duration
	}

	RateLimitConfig struct {
		LoginRPS   float64
		LoginBurst int
	}
)

// Address returns the "host:port" of the database server.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultFromEmail returns the platform sender identity.
func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddress}
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file
// and the environment variables prefixed with the current env (ie: DEV_SECRETKEY).
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Platform Digital")
	v.SetDefault("secretKey", "v8#k2m!x9q@w4e$r7t&y1u*i3o(p5a)s6d^f0g%h+j-l=z")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Platform Digital")
	v.SetDefault("defaultFromAddress", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", EnginePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "platformdigital")
	v.SetDefault("database.user", "platformdigital")
	v.SetDefault("database.password", "platformdigital")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("firestore.projectID", "")
	v.SetDefault("firestore.credentialsFile", "")

	v.SetDefault("auth.provider", AuthProviderLocal)
	v.SetDefault("auth.firebaseCredentialsFile", "")

	v.SetDefault("scheduler.enabled", env != "TEST")
	v.SetDefault("scheduler.licenseSpec", "@daily")
	v.SetDefault("scheduler.overdueSpec", "0 7 * * 1-5")
	v.SetDefault("scheduler.noticeWindow", 14*24*time.Hour)
	v.SetDefault("scheduler.expiringAhead", 30*24*time.Hour)

	v.SetDefault("rateLimit.loginRPS", 1.0)
	v.SetDefault("rateLimit.loginBurst", 5)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromName:           v.GetString("defaultFromName"),
		DefaultFromAddress:        v.GetString("defaultFromAddress"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Firestore: FirestoreConfig{
			ProjectID:       v.GetString("firestore.projectID"),
			CredentialsFile: v.GetString("firestore.credentialsFile"),
		},
		Auth: AuthConfig{
			Provider:                strings.ToLower(v.GetString("auth.provider")),
			FirebaseCredentialsFile: v.GetString("auth.firebaseCredentialsFile"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			LicenseSpec:   v.GetString("scheduler.licenseSpec"),
			OverdueSpec:   v.GetString("scheduler.overdueSpec"),
			NoticeWindow:  v.GetDuration("scheduler.noticeWindow"),
			ExpiringAhead: v.GetDuration("scheduler.expiringAhead"),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   v.GetFloat64("rateLimit.loginRPS"),
			LoginBurst: v.GetInt("rateLimit.loginBurst"),
		},
	}
}

// Validate checks the settings that cannot have a sane default.
func (c *Config) Validate() error {
	switch c.Database.Engine {
	case EnginePostgres, EngineMemory:
	case EngineFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("config: firestore.projectID is required with the %q engine", EngineFirestore)
		}
	default:
		return fmt.Errorf("config: unknown database engine %q", c.Database.Engine)
	}
	switch c.Auth.Provider {
	case AuthProviderLocal, AuthProviderFirebase:
	default:
		return fmt.Errorf("config: unknown auth provider %q", c.Auth.Provider)
	}
	if !c.Debug && c.SecretKey == "" {
		return fmt.Errorf("config: secretKey is required")
	}
	return nil
}

// NewTestConfig returns a config suitable for tests: in-memory storage, no scheduler.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		Debug:                     false,
		TestMode:                  true,
		AppName:                   "Platform Digital",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromName:           "Platform Digital",
		DefaultFromAddress:        "noreply@localhost",
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 4 * time.Hour,
		Server:                    ServerConfig{Host: "localhost", DisableReqLogs: true, ShutdownTimeout: time.Second},
		Database:                  DatabaseConfig{Engine: EngineMemory},
		Auth:                      AuthConfig{Provider: AuthProviderLocal},
		Scheduler: SchedulerConfig{
			NoticeWindow:  14 * 24 * time.Hour,
			ExpiringAhead: 30 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{LoginRPS: 100, LoginBurst: 100},
	}
}
