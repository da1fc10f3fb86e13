package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultTaskConfig(t *testing.T) {
	cfg := DefaultTaskConfig()
	if cfg.CheckOnly {
		t.Errorf("CheckOnly = true, want false")
	}
	if cfg.ConfigFileFilled() {
		t.Errorf("ConfigFileFilled() = true, want false")
	}
	if len(cfg.SourceDirectories) != 1 || cfg.SourceDirectories[0] != "src" {
		t.Errorf("SourceDirectories = %v, want [src]", cfg.SourceDirectories)
	}
	if cfg.AdditionalArgs == nil || len(cfg.AdditionalArgs) != 0 {
		t.Errorf("AdditionalArgs = %#v, want empty non-nil slice", cfg.AdditionalArgs)
	}

	other := DefaultTaskConfig()
	other.SourceDirectories[0] = "lib"
	if cfg.SourceDirectories[0] != "src" {
		t.Fatalf("default source directories are shared between configs")
	}
}

func TestOptionsApply(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		start     TaskConfig
		wantCheck bool
		wantFile  *string
		wantDirs  []string
		wantArgs  []string
	}{
		{
			name:     "empty options keep defaults",
			opts:     Options{},
			start:    DefaultTaskConfig(),
			wantDirs: []string{"src"},
			wantArgs: []string{},
		},
		{
			name:      "all fields",
			opts:      Options{CheckOnly: Bool(true), ConfigFile: String("pyproject.toml"), SourceDirectories: []string{"a", "b"}, AdditionalArgs: []string{"-q"}},
			start:     DefaultTaskConfig(),
			wantCheck: true,
			wantFile:  String("pyproject.toml"),
			wantDirs:  []string{"a", "b"},
			wantArgs:  []string{"-q"},
		},
		{
			name:     "empty config file clears",
			opts:     Options{ConfigFile: String("")},
			start:    TaskConfig{ConfigFile: String("black.toml"), SourceDirectories: []string{"src"}},
			wantDirs: []string{"src"},
		},
		{
			name:     "config path kept verbatim",
			opts:     Options{ConfigFile: String(" odd name.toml ")},
			start:    TaskConfig{ConfigFile: String("black.toml"), SourceDirectories: []string{"src"}},
			wantFile: String(" odd name.toml "),
			wantDirs: []string{"src"},
		},
		{
			name:     "explicit empty source directories",
			opts:     Options{SourceDirectories: []string{}},
			start:    DefaultTaskConfig(),
			wantDirs: []string{},
			wantArgs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.start
			tt.opts.Apply(&cfg)
			if cfg.CheckOnly != tt.wantCheck {
				t.Errorf("CheckOnly = %v, want %v", cfg.CheckOnly, tt.wantCheck)
			}
			switch {
			case tt.wantFile == nil && cfg.ConfigFile != nil:
				t.Errorf("ConfigFile = %q, want nil", *cfg.ConfigFile)
			case tt.wantFile != nil && (cfg.ConfigFile == nil || *cfg.ConfigFile != *tt.wantFile):
				t.Errorf("ConfigFile = %v, want %q", cfg.ConfigFile, *tt.wantFile)
			}
			if !equalStrings(cfg.SourceDirectories, tt.wantDirs) {
				t.Errorf("SourceDirectories = %v, want %v", cfg.SourceDirectories, tt.wantDirs)
			}
			if !equalStrings(cfg.AdditionalArgs, tt.wantArgs) {
				t.Errorf("AdditionalArgs = %v, want %v", cfg.AdditionalArgs, tt.wantArgs)
			}
		})
	}
}

func TestOptionsApplyCopiesSlices(t *testing.T) {
	dirs := []string{"pkg"}
	cfg := DefaultTaskConfig()
	Options{SourceDirectories: dirs}.Apply(&cfg)
	dirs[0] = "mutated"
	if cfg.SourceDirectories[0] != "pkg" {
		t.Fatalf("Apply aliased caller slice: %v", cfg.SourceDirectories)
	}
}

func TestTaskConfigClone(t *testing.T) {
	orig := TaskConfig{ConfigFile: String("a.toml"), SourceDirectories: []string{"src"}, AdditionalArgs: []string{"-q"}}
	clone := orig.Clone()
	*clone.ConfigFile = "b.toml"
	clone.SourceDirectories[0] = "lib"
	clone.AdditionalArgs[0] = "-v"
	if *orig.ConfigFile != "a.toml" || orig.SourceDirectories[0] != "src" || orig.AdditionalArgs[0] != "-q" {
		t.Fatalf("Clone shares state with original: %+v", orig)
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"1", false, true},
		{" TRUE ", false, true},
		{"on", false, true},
		{"0", true, false},
		{"Off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := ParseBoolFlag(tt.in, tt.def); got != tt.want {
			t.Errorf("ParseBoolFlag(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestNewViper_ReadsHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	configDir := filepath.Join(home, ".blacktask")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "check: true\nblack-config: black.toml\nsource-directories:\n  - app\n  - lib\nadditional-args:\n  - --fast\ntimeout: 30\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}

	opts := OptionsFromViper(v)
	if opts.CheckOnly == nil || !*opts.CheckOnly {
		t.Errorf("CheckOnly = %v, want true", opts.CheckOnly)
	}
	if opts.ConfigFile == nil || *opts.ConfigFile != "black.toml" {
		t.Errorf("ConfigFile = %v, want black.toml", opts.ConfigFile)
	}
	if !equalStrings(opts.SourceDirectories, []string{"app", "lib"}) {
		t.Errorf("SourceDirectories = %v", opts.SourceDirectories)
	}
	if !equalStrings(opts.AdditionalArgs, []string{"--fast"}) {
		t.Errorf("AdditionalArgs = %v", opts.AdditionalArgs)
	}
	if got := ResolveTimeout(v); got != 30*time.Second {
		t.Errorf("ResolveTimeout() = %v, want 30s", got)
	}
}

func TestNewViper_MissingHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	opts := OptionsFromViper(v)
	if opts.CheckOnly != nil || opts.ConfigFile != nil || opts.SourceDirectories != nil || opts.AdditionalArgs != nil {
		t.Fatalf("expected unset options, got %+v", opts)
	}
	if got := ResolveTimeout(v); got != defaultTimeoutSeconds*time.Second {
		t.Errorf("ResolveTimeout() = %v, want default", got)
	}
}

func TestNewViper_ExplicitFileMissing(t *testing.T) {
	if _, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestResolveTimeout_Env(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		env  string
		want time.Duration
	}{
		{"45", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"0", 0},
		{"-5", defaultTimeoutSeconds * time.Second},
		{"garbage", defaultTimeoutSeconds * time.Second},
		{"999999", maxTimeoutSeconds * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("BLACKTASK_TIMEOUT", tt.env)
			v, err := NewViper("")
			if err != nil {
				t.Fatalf("NewViper() error = %v", err)
			}
			if got := ResolveTimeout(v); got != tt.want {
				t.Fatalf("ResolveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
