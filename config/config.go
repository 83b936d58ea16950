package config

import (
	"errors"
	"flag"
	"io/fs"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	Location      *time.Location
	AdminUser     string
	AdminPassword string
	Debug         bool
}

// environment holds the defaults read from the process environment; flags override them.
type environment struct {
	Host          string `env:"SURVEY_HOST" env-default:"0.0.0.0"`
	Port          uint   `env:"SURVEY_PORT" env-default:"80"`
	DBUrl         string `env:"SURVEY_DB_URL" env-default:"survey.sqlite"`
	TokenSecret   string `env:"SURVEY_TOKEN_SECRET"`
	TokenTTL      uint   `env:"SURVEY_TOKEN_TTL" env-default:"120"`
	TimeZone      string `env:"SURVEY_TIMEZONE" env-default:"Local"`
	AdminUser     string `env:"SURVEY_ADMIN_USER"`
	AdminPassword string `env:"SURVEY_ADMIN_PASSWORD"`
	Debug         bool   `env:"SURVEY_DEBUG" env-default:"false"`
}

func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:]...)
}

// Parse reads the environment (and a .env file, when present), then the
// command line arguments against flags.
func Parse(flags *flag.FlagSet, args ...string) (cfg Config, err error) {
	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return
	}

	var env environment
	err = cleanenv.ReadEnv(&env)
	if err != nil {
		return
	}

	var host string
	flags.StringVar(&host, "host", env.Host, "listen host name")
	var port uint
	flags.UintVar(&port, "port", env.Port, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", env.DBUrl, "path to SQLite3 DB file")
	flags.StringVar(&cfg.TokenSecret, "token-secret", env.TokenSecret, "secret key for token encryption and decryption")
	var ttl uint
	flags.UintVar(&ttl, "token-ttl", env.TokenTTL, "token TTL in seconds")
	var tz string
	flags.StringVar(&tz, "timezone", env.TimeZone, "time zone deciding which day it is for survey dates")
	flags.StringVar(&cfg.AdminUser, "admin-user", env.AdminUser, "admin account to create or update at startup")
	flags.StringVar(&cfg.AdminPassword, "admin-password", env.AdminPassword, "password of the admin account")
	flags.BoolVar(&cfg.Debug, "debug", env.Debug, "log at DEBUG level")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return
	}

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("missing parameter -admin-password")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
