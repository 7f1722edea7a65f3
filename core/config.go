package core

import (
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

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		AllowOrigins    []string
		DisableReqLogs  bool
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | pgx | sqlite
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite DSN
	}

	AuthConfig struct {
		Enabled                   bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	TaxConfig struct {
		MunicipalRate  float64
		StateRate      float64
		StateThreshold float64 // SEK per year
	}

	SemesterConfig struct {
		DaysPerYear int
	}

	Config struct {
		Debug           bool
		TestMode        bool
		AppName         string
		Env             string
		Build           string
		SecretKey       string
		RollbarToken    string
		SendgridApiKey  string
		FrontendBaseURL string

		defaultFromEmail mail.Address

		Server   ServerConfig
		Database DatabaseConfig
		Auth     AuthConfig
		Tax      TaxConfig
		Semester SemesterConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return conf.defaultFromEmail
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Lönesystem")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k9#v2+u7!t1$h0w6@q4^z8&m3*e5%r1(x7)l2-p9=b6")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Lönesystem <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.allowOrigins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.requestTimeout", 30*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "lonesystem")
	v.SetDefault("database.user", "lonesystem")
	v.SetDefault("database.password", "lonesystem")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "file:lonesystem.db")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwtExpirationDelta", 8*time.Hour)
	v.SetDefault("auth.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("tax.municipalRate", 0.32)
	v.SetDefault("tax.stateRate", 0.20)
	v.SetDefault("tax.stateThreshold", 540000.0)

	v.SetDefault("semester.daysPerYear", 25)
}

// NewConfig loads the application configuration from defaults, the optional
// config/.env.<env> file and the environment (prefixed with the ENV name).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return newConfigFromViper(v, env)
}

// NewTestConfig returns a configuration suited for tests: in-memory sqlite, auth off, no debug output.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("debug", false)
	v.Set("testMode", true)
	v.Set("database.engine", "sqlite")
	v.Set("database.path", "file::memory:")
	v.Set("server.disableReqLogs", true)
	return newConfigFromViper(v, "TEST")
}

func newConfigFromViper(v *viper.Viper, env string) *Config {
	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			AllowOrigins:    v.GetStringSlice("server.allowOrigins"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			RequestTimeout:  v.GetDuration("server.requestTimeout"),
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
			Path:          v.GetString("database.path"),
		},
		Auth: AuthConfig{
			Enabled:                   v.GetBool("auth.enabled"),
			JWTExpirationDelta:        v.GetDuration("auth.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("auth.jwtRefreshExpirationDelta"),
		},
		Tax: TaxConfig{
			MunicipalRate:  v.GetFloat64("tax.municipalRate"),
			StateRate:      v.GetFloat64("tax.stateRate"),
			StateThreshold: v.GetFloat64("tax.stateThreshold"),
		},
		Semester: SemesterConfig{
			DaysPerYear: v.GetInt("semester.daysPerYear"),
		},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	conf.defaultFromEmail = *from
	return conf
}
