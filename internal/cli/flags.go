package cli

import "testrig/internal/config"

// Flags holds command-line flags
type Flags struct {
	TestPath  string
	TestCases bool
	Verbose   bool
}

// ServeFlags holds the flags of the serve subcommands
type ServeFlags struct {
	Port     int
	CertFile string
	KeyFile  string
	User     string
	Password string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		TestPath:  f.TestPath,
		TestCases: f.TestCases,
		Verbose:   f.Verbose,
	}
}
