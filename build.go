//go:build ignore

// build.go - bnfcli build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, ratchet, web, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "bnfcli"

var (
	distDir = "dist"

	// key = directory under cmd/, value = output name
	executables = map[string]string{
		"ratchet": "ratchet",
		"web":     "bnfweb",
	}
)

func main() {
	target := flag.String("target", "all", "build target")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	var err error
	switch *target {
	case "all":
		for _, name := range []string{"ratchet", "web"} {
			if err = buildExecutable(name, *verbose); err != nil {
				break
			}
		}
	case "ratchet", "web":
		err = buildExecutable(*target, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		err = fmt.Errorf("unknown target %q", *target)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess("done: " + *target)
}

func printInfo(msg string)    { fmt.Println("[INFO]", msg) }
func printSuccess(msg string) { fmt.Println("[OK]", msg) }
func printError(msg string)   { fmt.Fprintln(os.Stderr, "[ERROR]", msg) }

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func buildExecutable(name string, verbose bool) error {
	output := executables[name]
	if runtime.GOOS == "windows" {
		output += ".exe"
	}
	output = filepath.Join(distDir, output)

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build", "-ldflags", ldflags, "-o", output, "./cmd/" + name}
	if verbose {
		args = append(args, "-v")
	}

	printInfo(fmt.Sprintf("building %s -> %s", name, output))
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func runTests(verbose bool) error {
	args := []string{"test", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
