//go:build ignore

// build.go - surveytab build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"surveycli/pkg/contracts"
)

const (
	module = "surveycli"
	binary = "surveytab"
)

var (
	distDir = "dist"

	// release platforms as GOOS/GOARCH
	platforms = []string{"linux/amd64", "linux/arm64", "darwin/arm64", "windows/amd64"}

	info    = color.New(color.FgBlue)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	color.New(color.FgCyan, color.Bold).Printf("surveytab %s build\n\n", contracts.Version)

	start := time.Now()
	var err error
	switch *target {
	case "build":
		err = build("", "", *verbose)
	case "test":
		err = runTests(*verbose)
	case "release":
		err = release(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		fmt.Println("Targets: build, test, release, clean")
		os.Exit(1)
	}
	if err != nil {
		failure.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	success.Printf("[SUCCESS] %s completed in %s\n", *target, time.Since(start).Round(time.Millisecond))
}

// ldflags stamps the version and build identity into the binary
func ldflags() string {
	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s/internal/app.BuildTime=%s", module, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s/internal/app.BuildID=%s", module, uuid.NewString()),
	}, " ")
}

// build compiles cmd/surveytab into dist. Empty goos and goarch build for the
// host.
func build(goos, goarch string, verbose bool) error {
	name := binary
	if goos != "" {
		name = fmt.Sprintf("%s-%s-%s", binary, goos, goarch)
	}
	if goos == "windows" {
		name += ".exe"
	}
	out := filepath.Join(distDir, name)
	info.Printf("[INFO] building %s\n", out)

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", out, "./cmd/surveytab"}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}
	cmd := exec.Command("go", args...)
	cmd.Env = os.Environ()
	if goos != "" {
		cmd.Env = append(cmd.Env, "GOOS="+goos, "GOARCH="+goarch)
	}
	if err := run(cmd, verbose); err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}

	if st, err := os.Stat(out); err == nil {
		success.Printf("[SUCCESS] built %s (%.1f MB)\n", name, float64(st.Size())/1024/1024)
	}
	return nil
}

func release(verbose bool) error {
	for _, p := range platforms {
		goos, goarch, _ := strings.Cut(p, "/")
		if err := build(goos, goarch, verbose); err != nil {
			return err
		}
	}
	return nil
}

func runTests(verbose bool) error {
	info.Println("[INFO] running go tests")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	return run(exec.Command("go", append(args, "./...")...), true)
}

func run(cmd *exec.Cmd, verbose bool) error {
	if verbose {
		fmt.Printf("go %s\n", strings.Join(cmd.Args[1:], " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
