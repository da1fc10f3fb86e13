package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	pyprojectFile         = "pyproject.toml"
	defaultTestsDirectory = "tests"
	defaultVirtualEnv     = ".venv"
)

// ProjectSettings carries the project-wide Python settings shared by every
// formatter task of a project.
type ProjectSettings struct {
	ProjectDir     string
	TestsDirectory string
	VirtualEnv     string
}

type pyproject struct {
	Tool struct {
		Blacktask struct {
			TestsDirectory string `toml:"tests-directory"`
			VirtualEnv     string `toml:"venv"`
		} `toml:"blacktask"`
	} `toml:"tool"`
}

// LoadSettings reads [tool.blacktask] from <projectDir>/pyproject.toml and
// applies the "tests-directory" and "venv" viper keys on top.
func LoadSettings(projectDir string, v *viper.Viper) (*ProjectSettings, error) {
	dir := strings.TrimSpace(projectDir)
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir %q: %w", projectDir, err)
	}

	settings := &ProjectSettings{ProjectDir: abs}

	path := filepath.Join(abs, pyprojectFile)
	var doc pyproject
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		settings.TestsDirectory = strings.TrimSpace(doc.Tool.Blacktask.TestsDirectory)
		settings.VirtualEnv = strings.TrimSpace(doc.Tool.Blacktask.VirtualEnv)
	}

	if v != nil {
		if val := strings.TrimSpace(v.GetString("tests-directory")); val != "" {
			settings.TestsDirectory = val
		}
		if val := strings.TrimSpace(v.GetString("venv")); val != "" {
			settings.VirtualEnv = val
		}
	}

	return settings, nil
}

// TestsDirectoryArgs returns the tests directory as command arguments. An
// explicit directory is returned as-is; otherwise "tests" is used when it
// exists under the project directory.
func (s *ProjectSettings) TestsDirectoryArgs() []string {
	if s == nil {
		return []string{}
	}
	if s.TestsDirectory != "" {
		return []string{s.TestsDirectory}
	}
	if isDir(filepath.Join(s.ProjectDir, defaultTestsDirectory)) {
		return []string{defaultTestsDirectory}
	}
	return []string{}
}

// VirtualEnvDir returns the absolute virtual-env directory to activate, or
// "" when there is none.
func (s *ProjectSettings) VirtualEnvDir() string {
	if s == nil {
		return ""
	}
	if s.VirtualEnv != "" {
		if filepath.IsAbs(s.VirtualEnv) {
			return filepath.Clean(s.VirtualEnv)
		}
		return filepath.Join(s.ProjectDir, s.VirtualEnv)
	}
	candidate := filepath.Join(s.ProjectDir, defaultVirtualEnv)
	if isDir(candidate) {
		return candidate
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
