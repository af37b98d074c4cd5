package toolserver

import (
	"os"
	"regexp"
)

// envPlaceholder matches the only supported interpolation syntax,
// $ENV{NAME}.
var envPlaceholder = regexp.MustCompile(`\$ENV\{([A-Za-z0-9_]+)\}`)

// envMap returns the process environment plus WORKSPACE_ROOT, if set, as
// the lookup table for $ENV{} substitution.
func envMap(workspaceRoot string) map[string]string {
	m := make(map[string]string, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	if workspaceRoot != "" {
		m["WORKSPACE_ROOT"] = workspaceRoot
	}
	return m
}

// resolveString substitutes every $ENV{NAME} occurrence in value. ok is
// false if any referenced variable is absent from env, in which case
// resolved is meaningless to the caller (the whole entry must be dropped).
func resolveString(value string, env map[string]string) (resolved string, ok bool) {
	ok = true
	out := envPlaceholder.ReplaceAllStringFunc(value, func(match string) string {
		name := envPlaceholder.FindStringSubmatch(match)[1]
		v, present := env[name]
		if !present {
			ok = false
			return match
		}
		return v
	})
	return out, ok
}

// resolveEntry interpolates every string field of a ToolingSpec-derived
// entry against env. It returns ok=false the moment any field references
// an unset variable; partial substitutions never reach
// the output, so the caller drops the whole entry rather than use a
// half-resolved one.
func resolveEntry(command, cwd, url string, args []string, env, headers map[string]string, lookup map[string]string) (rCommand, rCwd, rURL string, rArgs []string, rEnv, rHeaders map[string]string, ok bool) {
	ok = true

	resolveOne := func(s string) string {
		v, k := resolveString(s, lookup)
		if !k {
			ok = false
		}
		return v
	}

	rCommand = resolveOne(command)
	rCwd = resolveOne(cwd)
	rURL = resolveOne(url)

	if args != nil {
		rArgs = make([]string, len(args))
		for i, a := range args {
			rArgs[i] = resolveOne(a)
		}
	}
	if env != nil {
		rEnv = make(map[string]string, len(env))
		for k, v := range env {
			rEnv[k] = resolveOne(v)
		}
	}
	if headers != nil {
		rHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			rHeaders[k] = resolveOne(v)
		}
	}
	return
}
