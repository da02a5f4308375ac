package execution

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
)

const (
	helperEnv     = "TESTRIG_RUNNER_HELPER"
	helperExitEnv = "TESTRIG_HELPER_EXIT"
)

func TestMain(m *testing.M) {
	// Re-executed test binary standing in for the interpreter
	if os.Getenv(helperEnv) == "1" {
		os.Exit(runHelper(os.Args[1:]))
	}
	color.NoColor = true
	os.Exit(m.Run())
}

func runHelper(args []string) int {
	fmt.Printf("version=%q args=%s live=%s\n", os.Getenv("RBENV_VERSION"), strings.Join(args, " "), os.Getenv("LIVE"))
	fmt.Fprintln(os.Stderr, "/project/lib/client.rb:3: warning: method redefined; discarding old get")
	fmt.Fprintln(os.Stderr, "plain stderr line")
	fmt.Fprint(os.Stderr, "trailing without newline")

	if code := os.Getenv(helperExitEnv); code != "" {
		n, _ := strconv.Atoi(code)
		return n
	}
	return 0
}
