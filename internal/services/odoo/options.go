package odoo

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xelth-com/eckodoo/internal/logger"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 8069
	DefaultDatabase = "odoo_db"
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// settings collects option values before NewClient validates and resolves
// them. Pointer fields distinguish "not given" from "given as empty".
type settings struct {
	baseURL   *string
	host      *string
	port      *int
	secure    *bool
	database  *string
	username  *string
	password  *string
	transport http.RoundTripper
	dialer    Dialer
	logger    *logger.Logger
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL sets scheme, host and port from a URL such as
// "https://erp.example.com:8443". A URL without a port uses the scheme's
// default (443 for https, 80 for http), not DefaultPort. An explicit
// WithPort still wins.
func WithBaseURL(raw string) Option {
	return func(s *settings) { s.baseURL = &raw }
}

func WithHost(host string) Option {
	return func(s *settings) { s.host = &host }
}

// WithPort overrides the port, including one embedded in the base URL.
func WithPort(port int) Option {
	return func(s *settings) { s.port = &port }
}

// WithSecure selects https when no base URL is given.
func WithSecure(secure bool) Option {
	return func(s *settings) { s.secure = &secure }
}

func WithDatabase(db string) Option {
	return func(s *settings) { s.database = &db }
}

func WithUsername(username string) Option {
	return func(s *settings) { s.username = &username }
}

func WithPassword(password string) Option {
	return func(s *settings) { s.password = &password }
}

// WithTransport sets the HTTP round tripper used by the XML-RPC client.
// Timeouts, proxies and TLS settings belong here.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// WithDialer replaces the XML-RPC transport entirely. Mostly for tests.
func WithDialer(d Dialer) Option {
	return func(s *settings) { s.dialer = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Config is the resolved connection configuration of a Client.
type Config struct {
	Host     string
	Port     int
	Secure   bool
	Database string
	Username string
	Password string
}

// BaseURL renders scheme://host:port.
func (c Config) BaseURL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) commonURL() string { return c.BaseURL() + "/xmlrpc/2/common" }
func (c Config) objectURL() string { return c.BaseURL() + "/xmlrpc/2/object" }

// resolve applies defaults and override rules and validates the result.
func (s *settings) resolve() (Config, error) {
	cfg := Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Database: DefaultDatabase,
		Username: DefaultUsername,
		Password: DefaultPassword,
	}

	if s.secure != nil {
		cfg.Secure = *s.secure
	}
	if s.host != nil {
		cfg.Host = strings.TrimSpace(*s.host)
	}

	if s.baseURL != nil {
		u, err := parseBaseURL(*s.baseURL)
		if err != nil {
			return Config{}, err
		}
		cfg.Secure = u.Scheme == "https"
		cfg.Host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return Config{}, invalid("baseUrl", "invalid port %q in base URL", p)
			}
			cfg.Port = port
		} else if cfg.Secure {
			cfg.Port = 443
		} else {
			cfg.Port = 80
		}
	}

	if s.port != nil {
		cfg.Port = *s.port
	}
	if s.database != nil {
		cfg.Database = strings.TrimSpace(*s.database)
	}
	if s.username != nil {
		cfg.Username = strings.TrimSpace(*s.username)
	}
	if s.password != nil {
		cfg.Password = *s.password
	}

	if cfg.Host == "" {
		return Config{}, invalid("host", "host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, invalid("port", "port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Database == "" {
		return Config{}, invalid("database", "database name is required")
	}
	if cfg.Username == "" {
		return Config{}, invalid("username", "username is required")
	}

	return cfg, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, invalid("baseUrl", "invalid base URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid("baseUrl", "invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return nil, invalid("baseUrl", "invalid base URL %q: missing host", raw)
	}
	return u, nil
}
