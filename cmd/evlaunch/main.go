package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

func main() {
	if err := launch(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "evlaunch: %v\n", err)
		os.Exit(1)
	}
}

func launch() error {
	dir, err := resolveDir()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("chdir %s: %w", dir, err)
	}

	name := envName()
	binDir := filepath.Join(dir, name, "bin")
	if st, err := os.Stat(binDir); err != nil || !st.IsDir() {
		binDir = ""
	}
	extra, err := parseEnvFile(filepath.Join(dir, name+".env"))
	if err != nil {
		return fmt.Errorf("read env file: %w", err)
	}

	target := filepath.Join(dir, "evai")
	env := buildEnv(os.Environ(), binDir, name, extra)
	return syscall.Exec(target, buildArgv(target, os.Args[1:]), env)
}
