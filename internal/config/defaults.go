package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default discovery root, relative to the project
	DefaultTestPath = "test"
	// DefaultTestSuffix is the file name suffix that marks a test file
	DefaultTestSuffix = "_test.rb"
	// DefaultOutputJSONFile is the default last-run summary file name
	DefaultOutputJSONFile = "testrig-last-run.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultLogDir holds the live and proxy server logs
	DefaultLogDir = "log"

	DefaultPort          = 4000
	DefaultProxyPort     = 4001
	DefaultProxyUser     = "testrig@test.local"
	DefaultProxyPassword = "there is cake"

	DefaultSSLCert = "tmp/testrig.crt"
	DefaultSSLKey  = "tmp/testrig.key"

	// DefaultVersionEnv is set to each declared interpreter version in turn
	DefaultVersionEnv = "RBENV_VERSION"
	// DefaultAdapterMarker in a selected path means live servers are required
	DefaultAdapterMarker = "adapters"
	// DefaultWarningMarker tags interpreter warnings on stderr
	DefaultWarningMarker = "warning:"
	// DefaultDependencyDir is where tolerated third-party warnings come from
	DefaultDependencyDir = "vendor"

	DefaultServerTimeout = 15 * time.Second
	DefaultProxyTimeout  = 5 * time.Second
	DefaultProbeInterval = 100 * time.Millisecond

	// Environment handed to the test runner
	EnvLive      = "LIVE"
	EnvLiveProxy = "LIVE_PROXY"
	EnvSSLFile   = "SSL_FILE"
	EnvSSLKey    = "SSL_KEY"
)

// DefaultRunner loads every file argument up to "--" and leaves the rest in ARGV
var DefaultRunner = []string{
	"ruby", "-w", "-Ilib:test",
	"-e", "while (f = ARGV.shift) && f != '--'; load f; end",
}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"tmp",
	"log",
	"coverage",
}
