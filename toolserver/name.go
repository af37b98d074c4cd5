package toolserver

import (
	"net/url"
	"strconv"
	"strings"
)

// deriveRemoteName extracts a hostname-derived stem from a remote server
// URL, used when no prefix was given. "mcp-foo.example.com" yields "foo";
// any other host yields its first dash-separated segment.
func deriveRemoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "mcp-remote"
	}
	host := strings.ReplaceAll(u.Hostname(), ".", "-")
	parts := strings.Split(host, "-")
	if len(parts) > 2 && parts[0] == "mcp" {
		return parts[1]
	}
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "mcp-remote"
}

// deriveLocalName inspects argv for the first element that looks like a
// program path or module name rather than a flag, and turns it into a
// server name; falling back to the command itself.
func deriveLocalName(command string, args []string) string {
	var candidate string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "./") ||
			strings.HasPrefix(arg, "../") || strings.HasPrefix(arg, "~") {
			continue
		}
		if strings.Contains(arg, "/") && !strings.Contains(arg, "@") {
			continue
		}
		candidate = arg
		break
	}

	if candidate != "" {
		name := candidate
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		name = strings.TrimSuffix(name, ".py")
		name = strings.TrimSuffix(name, ".js")
		name = strings.ReplaceAll(name, "_", "-")
		if name != "" {
			return name
		}
		return "mcp-server"
	}

	return strings.ReplaceAll(command, "_", "-")
}

// nameResolver assigns unique server names within one document, appending
// "-2", "-3", ... on collision.
type nameResolver struct {
	seen  map[string]int
	inUse map[string]struct{}
}

func newNameResolver() *nameResolver {
	return &nameResolver{seen: make(map[string]int), inUse: make(map[string]struct{})}
}

func (r *nameResolver) resolve(base string) string {
	counter := r.seen[base] + 1
	r.seen[base] = counter
	name := base
	if counter > 1 {
		name = base + "-" + strconv.Itoa(counter)
	}
	for {
		if _, taken := r.inUse[name]; !taken {
			break
		}
		counter++
		r.seen[base] = counter
		name = base + "-" + strconv.Itoa(counter)
	}
	r.inUse[name] = struct{}{}
	return name
}
