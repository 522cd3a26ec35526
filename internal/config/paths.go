package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName = ".notedeck"
	// EnvHome relocates every notedeck file, e.g. to keep test runs away
	// from the real session.
	EnvHome = "NOTEDECK_HOME"
)

// Paths are the files notedeck reads and writes, all under one data dir.
type Paths struct {
	DataDir     string
	Config      string
	Env         string
	SessionDB   string
	SessionFile string
	UILog       string
}

// ResolvePaths roots the layout at $NOTEDECK_HOME, or ~/.notedeck.
func ResolvePaths() (Paths, error) {
	dir, err := dataDir()
	if err != nil {
		return Paths{}, err
	}
	return PathsUnder(dir), nil
}

func PathsUnder(dir string) Paths {
	return Paths{
		DataDir:     dir,
		Config:      filepath.Join(dir, "config.toml"),
		Env:         filepath.Join(dir, ".env"),
		SessionDB:   filepath.Join(dir, "session.db"),
		SessionFile: filepath.Join(dir, "session.json"),
		UILog:       filepath.Join(dir, "ui.log"),
	}
}

func dataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}
