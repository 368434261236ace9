package startup

import "strings"

// ExtractExecutablePath pulls the executable path out of a run-key command
// string. A leading double quote selects the text up to the matching quote;
// otherwise the text before the first space is used; otherwise the whole
// value.
func ExtractExecutablePath(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}

	if strings.HasPrefix(value, `"`) {
		if end := strings.IndexByte(value[1:], '"'); end >= 0 {
			return value[1 : end+1]
		}
	}

	if space := strings.IndexByte(value, ' '); space > 0 {
		return value[:space]
	}

	return value
}
