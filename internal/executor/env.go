package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// venvBinDir returns the directory holding a virtual env's executables.
func venvBinDir(venv string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts")
	}
	return filepath.Join(venv, "bin")
}

// activateEnv returns base with the virtual env activated and extra applied
// on top. PYTHONHOME is dropped when a virtual env is active.
func activateEnv(base []string, venv string, extra map[string]string) []string {
	vars := make(map[string]string, len(base)+len(extra)+2)
	var order []string
	listed := make(map[string]bool, len(base)+len(extra)+2)
	set := func(key, val string) {
		if !listed[key] {
			listed[key] = true
			order = append(order, key)
		}
		vars[key] = val
	}

	for _, kv := range base {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		set(envKey(key), val)
	}

	if venv = strings.TrimSpace(venv); venv != "" {
		bin := venvBinDir(venv)
		if cur := vars["PATH"]; cur != "" {
			set("PATH", bin+string(os.PathListSeparator)+cur)
		} else {
			set("PATH", bin)
		}
		set("VIRTUAL_ENV", venv)
		delete(vars, "PYTHONHOME")
	}

	extraKeys := make([]string, 0, len(extra))
	for k := range extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		set(envKey(k), extra[k])
	}

	out := make([]string, 0, len(vars))
	for _, k := range order {
		if val, ok := vars[k]; ok {
			out = append(out, k+"="+val)
		}
	}
	return out
}

// envKey normalizes the case of PATH on Windows, where it may appear as Path.
func envKey(key string) string {
	if runtime.GOOS == "windows" && strings.EqualFold(key, "PATH") {
		return "PATH"
	}
	return key
}

func lookupEnv(env []string, key string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}

// lookPathIn resolves file against pathList the way a shell would with that
// PATH, rather than the PATH of the current process.
func lookPathIn(file, pathList string) (string, bool) {
	if strings.ContainsRune(file, os.PathSeparator) || strings.Contains(file, "/") {
		return file, isExecutable(file)
	}
	exts := []string{""}
	if runtime.GOOS == "windows" {
		exts = []string{".exe", ".bat", ".cmd", ""}
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			dir = "."
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, file+ext)
			if isExecutable(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
