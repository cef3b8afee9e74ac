// Package envfile loads KEY=VALUE environment files (".env" style) into maps
// that are passed explicitly to the monitor process instead of being exported
// into the wrapper's own environment.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads an environment file from disk. A missing file is not an error
// and returns an empty map, since the file is optional.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("could not open environment file: %w", err)
	}
	defer f.Close()

	env, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse environment file %q: %w", path, err)
	}

	return env, nil
}

// Parse reads KEY=VALUE lines. Blank lines and "#" comments are skipped, an
// optional "export " prefix is tolerated, and single or double quotes around
// values are stripped.
func Parse(r io.Reader) (map[string]string, error) {
	env := map[string]string{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' separator", lineNo)
		}

		key = strings.TrimSpace(key)
		if !envKeyRegexp.MatchString(key) {
			return nil, fmt.Errorf("line %d: invalid environment variable key %q", lineNo, key)
		}

		env[key] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read environment file: %w", err)
	}

	return env, nil
}

// Merge merges environment maps, later maps overriding earlier ones.
func Merge(maps ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}

	return merged
}

// ToOSEnv converts a map into the KEY=VALUE slice form used by os/exec.
func ToOSEnv(env map[string]string) []string {
	s := make([]string, 0, len(env))
	for k, v := range env {
		s = append(s, k+"="+v)
	}

	return s
}

// FromOSEnv converts a KEY=VALUE slice (e.g. os.Environ()) into a map.
func FromOSEnv(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if key, value, ok := strings.Cut(kv, "="); ok {
			m[key] = value
		}
	}

	return m
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
