package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"testrig/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string
	TestSuffix  string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	LogDir         string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Execution settings
	Runner     []string
	Versions   []string
	VersionEnv string

	// Live server settings
	SSL           bool
	SSLCert       string
	SSLKey        string
	Port          int
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	AdapterMarker string
	ServerTimeout time.Duration
	ProxyTimeout  time.Duration
	ProbeInterval time.Duration

	// ServerCommand and ProxyCommand override the built-in servers when set
	ServerCommand []string
	ProxyCommand  []string

	// Warning policy
	WarningMarker string
	DependencyDir string

	CI bool

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	TestPath  string
	TestCases bool
	Verbose   bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		TestSuffix:     DefaultTestSuffix,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		LogDir:         DefaultLogDir,
		VersionEnv:     DefaultVersionEnv,
		SSLCert:        DefaultSSLCert,
		SSLKey:         DefaultSSLKey,
		Port:           DefaultPort,
		ProxyPort:      DefaultProxyPort,
		ProxyUser:      DefaultProxyUser,
		ProxyPassword:  DefaultProxyPassword,
		AdapterMarker:  DefaultAdapterMarker,
		ServerTimeout:  DefaultServerTimeout,
		ProxyTimeout:   DefaultProxyTimeout,
		ProbeInterval:  DefaultProbeInterval,
		WarningMarker:  DefaultWarningMarker,
		DependencyDir:  DefaultDependencyDir,
	}
	// Copy default slices so callers can't mutate the package defaults
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	cfg.Runner = append([]string(nil), DefaultRunner...)
	return cfg
}

// Load creates a config from defaults, the project's .env file and the environment, then applies flags
func Load(flags Flags) (*Config, error) {
	cfg := New()

	// .env might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	if err := cfg.applyEnv(newViper(cfg)); err != nil {
		return nil, err
	}

	cfg.Flags = flags
	if flags.TestPath != "" {
		cfg.TestPath = flags.TestPath
	}
	return cfg, nil
}

// newViper binds every environment-backed setting, using cfg's current values as defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TESTRIG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("test_path", cfg.TestPath)
	v.SetDefault("test_suffix", cfg.TestSuffix)
	v.SetDefault("log_dir", cfg.LogDir)
	v.SetDefault("runner", cfg.Runner)
	v.SetDefault("versions", cfg.Versions)
	v.SetDefault("version_env", cfg.VersionEnv)
	v.SetDefault("ssl", cfg.SSL)
	v.SetDefault("ssl_cert", cfg.SSLCert)
	v.SetDefault("ssl_key", cfg.SSLKey)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("proxy_port", cfg.ProxyPort)
	v.SetDefault("proxy_user", cfg.ProxyUser)
	v.SetDefault("proxy_password", cfg.ProxyPassword)
	v.SetDefault("server_timeout", cfg.ServerTimeout)
	v.SetDefault("proxy_timeout", cfg.ProxyTimeout)
	v.SetDefault("probe_interval", cfg.ProbeInterval)
	v.SetDefault("server_command", cfg.ServerCommand)
	v.SetDefault("proxy_command", cfg.ProxyCommand)
	v.SetDefault("warning_marker", cfg.WarningMarker)
	v.SetDefault("dependency_dir", cfg.DependencyDir)
	v.SetDefault("ci", cfg.CI)

	// Un-prefixed names used by CI systems and older scripts
	_ = v.BindEnv("ssl", "TESTRIG_SSL", "SSL")
	_ = v.BindEnv("ci", "CI")
	return v
}

func (c *Config) applyEnv(v *viper.Viper) error {
	c.TestPath = v.GetString("test_path")
	c.TestSuffix = v.GetString("test_suffix")
	c.LogDir = v.GetString("log_dir")
	c.Runner = v.GetStringSlice("runner")
	c.Versions = v.GetStringSlice("versions")
	c.VersionEnv = v.GetString("version_env")
	c.SSL = v.GetBool("ssl")
	c.SSLCert = v.GetString("ssl_cert")
	c.SSLKey = v.GetString("ssl_key")
	c.Port = v.GetInt("port")
	c.ProxyPort = v.GetInt("proxy_port")
	c.ProxyUser = v.GetString("proxy_user")
	c.ProxyPassword = v.GetString("proxy_password")
	c.ServerTimeout = v.GetDuration("server_timeout")
	c.ProxyTimeout = v.GetDuration("proxy_timeout")
	c.ProbeInterval = v.GetDuration("probe_interval")
	c.ServerCommand = v.GetStringSlice("server_command")
	c.ProxyCommand = v.GetStringSlice("proxy_command")
	c.WarningMarker = v.GetString("warning_marker")
	c.DependencyDir = v.GetString("dependency_dir")
	c.CI = v.GetBool("ci")

	if len(c.Runner) == 0 {
		return fmt.Errorf("TESTRIG_RUNNER must name a command")
	}
	if c.Port <= 0 || c.ProxyPort <= 0 {
		return fmt.Errorf("invalid ports: live=%d proxy=%d", c.Port, c.ProxyPort)
	}
	if c.Port == c.ProxyPort {
		return fmt.Errorf("live server and proxy cannot share port %d", c.Port)
	}
	return nil
}

// GetTestPath returns the discovery root, relative to the project unless absolute
func (c *Config) GetTestPath() string {
	if filepath.IsAbs(c.TestPath) {
		return c.TestPath
	}
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the last-run summary file.
// Resolves to an absolute path so run and warnings always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ServerLogPath is where the live server's stdout and stderr are appended
func (c *Config) ServerLogPath() string {
	return filepath.Join(c.ProjectPath, c.LogDir, "server.log")
}

// ProxyLogPath is where the proxy server's stdout and stderr are appended
func (c *Config) ProxyLogPath() string {
	return filepath.Join(c.ProjectPath, c.LogDir, "proxy.log")
}

// Scheme returns the live server's URL scheme
func (c *Config) Scheme() string {
	if c.SSL {
		return "https"
	}
	return "http"
}

// BaseURL returns the live server URL handed to adapter tests
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s://localhost:%d", c.Scheme(), c.Port)
}

// ProxyURL returns the proxy URL with percent-encoded credentials
func (c *Config) ProxyURL() string {
	u := url.URL{
		Scheme: "http",
		User:   url.UserPassword(c.ProxyUser, c.ProxyPassword),
		Host:   "localhost:" + strconv.Itoa(c.ProxyPort),
	}
	return u.String()
}

// NeedsServers reports whether any selected file is an adapter test
func (c *Config) NeedsServers(files []string) bool {
	return domain.TestFileSet(files).Contains(c.AdapterMarker)
}
