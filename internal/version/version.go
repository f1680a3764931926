package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time via -ldflags "-X ...".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String returns a one-line descriptor, e.g. "docshub dev (abc1234)".
func String() string {
	if GitCommit == "" {
		return fmt.Sprintf("docshub %s", Version)
	}
	return fmt.Sprintf("docshub %s (%s)", Version, shortCommit())
}

// PrintVersion writes the full build description to stdout.
func PrintVersion() {
	fmt.Println(String())
	if BuildTime != "" {
		fmt.Printf("Build time: %s\n", BuildTime)
	}
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}
