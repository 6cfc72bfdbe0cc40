package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	Host = "127.0.0.1"
	Port = 8080

	// Content settings
	ContentRoot  = "blog"
	TemplateRoot = "templates"
	StaticRoot   = "static"
	SiteFile     = "site.yml"

	// Listing settings
	ShowHidden = false

	// Server settings
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second

	LogLevel = "info"
)

// Init loads configuration from defaults, an optional .env file, the
// environment and finally command-line args, in increasing precedence.
func Init(args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found or error loading it.")
	}

	v := viper.New()
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("content_root", "blog")
	v.SetDefault("template_root", "templates")
	v.SetDefault("static_root", "static")
	v.SetDefault("site_file", "site.yml")
	v.SetDefault("show_hidden", false)
	v.SetDefault("read_timeout", 10)
	v.SetDefault("write_timeout", 10)
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	flags := NewFlagSet()
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	return apply(v)
}

// NewFlagSet declares the command-line surface. Flag names match the
// environment keys with dashes in place of underscores.
func NewFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("mdblog", pflag.ContinueOnError)
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(normalizeKey(name))
	})
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("port", 8080, "port to bind")
	flags.String("content-root", "blog", "directory holding one subdirectory per article")
	flags.String("template-root", "templates", "directory of *.html templates")
	flags.String("static-root", "static", "directory served under /static")
	flags.String("site-file", "site.yml", "site configuration file (.yml, .yaml or .toml)")
	flags.Bool("show-hidden", false, "include hidden articles in the index")
	flags.Int("read-timeout", 10, "HTTP read timeout in seconds")
	flags.Int("write-timeout", 10, "HTTP write timeout in seconds")
	flags.String("log-level", "info", "debug, info, warn or error")
	return flags
}

func apply(v *viper.Viper) error {
	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %d (must be 1-65535)", port)
	}
	readTimeout := v.GetInt("read_timeout")
	writeTimeout := v.GetInt("write_timeout")
	if readTimeout <= 0 || writeTimeout <= 0 {
		return fmt.Errorf("invalid timeouts (must be positive seconds)")
	}

	Host = v.GetString("host")
	Port = port
	ContentRoot = v.GetString("content_root")
	TemplateRoot = v.GetString("template_root")
	StaticRoot = v.GetString("static_root")
	SiteFile = v.GetString("site_file")
	ShowHidden = v.GetBool("show_hidden")
	ReadTimeout = time.Duration(readTimeout) * time.Second
	WriteTimeout = time.Duration(writeTimeout) * time.Second
	LogLevel = v.GetString("log_level")
	return nil
}

// Addr returns the host:port pair the server binds to.
func Addr() string {
	return net.JoinHostPort(Host, strconv.Itoa(Port))
}

func normalizeKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
