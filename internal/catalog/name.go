package catalog

import "strings"

// Sanitize maps an arbitrary slug to a Slack-legal emoji name: lowercase,
// restricted to [a-z0-9'+_-], with every run of illegal runes collapsed to a
// single underscore. The mapping is deterministic; the same input always
// yields the same name. Returns "" when nothing legal remains.
func Sanitize(name string) string {
	var b strings.Builder
	pendingSep := false

	for _, r := range strings.ToLower(name) {
		legal := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '+' || r == '\''
		if !legal {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "-_")
}
