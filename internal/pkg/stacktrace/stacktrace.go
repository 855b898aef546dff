package stacktrace

import "strings"

// InternalPaths extracts the internal package frames from a raw stack trace,
// trimmed to path:line form. Frames outside internal/ are dropped so panic
// logs stay readable.
func InternalPaths(stack []byte) []string {
	var paths []string

	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		internalIdx := strings.Index(line, "/internal/")
		if internalIdx == -1 || internalIdx > idx {
			continue
		}

		end := idx + len(".go:")
		for end < len(line) && line[end] >= '0' && line[end] <= '9' {
			end++
		}

		paths = append(paths, line[internalIdx+1:end])
	}

	return paths
}
