package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands environment variables and a leading ~ in p. On Windows
// %VAR% references and a ~\ prefix are honoured as well.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = expandEnv(p)

	rest, ok := trimHome(p)
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// trimHome strips a leading "~" or "~/" and reports whether one was present.
func trimHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if strings.HasPrefix(p, "~/") {
		return p[2:], true
	}
	if runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`) {
		return p[2:], true
	}
	return "", false
}

// resolveUnder returns p unchanged when absolute, otherwise joined to base.
func resolveUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func expandEnv(p string) string {
	p = os.ExpandEnv(p)
	if runtime.GOOS != "windows" {
		return p
	}
	return expandWindowsEnv(p)
}

// expandWindowsEnv replaces %VAR% with its value. Unset variables and a
// lone or doubled % are left as written.
func expandWindowsEnv(p string) string {
	var b strings.Builder
	for {
		before, after, found := strings.Cut(p, "%")
		b.WriteString(before)
		if !found {
			return b.String()
		}
		key, tail, closed := strings.Cut(after, "%")
		switch {
		case !closed:
			b.WriteByte('%')
			b.WriteString(after)
			return b.String()
		case key == "":
			b.WriteByte('%')
			p = after
			continue
		}
		if val, ok := os.LookupEnv(key); ok {
			b.WriteString(val)
		} else {
			b.WriteString("%" + key + "%")
		}
		p = tail
	}
}
