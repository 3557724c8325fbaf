package fileserver

import (
	"net/url"
	"path/filepath"
	"strings"
)

// resolvePath percent-decodes reqPath and joins it onto root, rejecting any
// path component that is "..", empty, an absolute path segment, or a
// Windows drive prefix (e.g. "c:"), matching
// ServeVariant::build_and_validate_path's component-by-component walk.
func resolvePath(root, reqPath string) (string, bool) {
	trimmed := strings.TrimPrefix(reqPath, "/")
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		return "", false
	}

	full := root
	for _, component := range strings.Split(decoded, "/") {
		switch component {
		case "":
			continue // collapse doubled slashes, matching the original's Component::CurDir-like tolerance
		case ".":
			continue
		case "..":
			return "", false
		}
		if !isSafeComponent(component) {
			return "", false
		}
		full = filepath.Join(full, component)
	}
	return full, true
}

// isSafeComponent rejects a path segment that is itself an absolute path or
// carries a drive prefix once re-parsed on its own — guards against
// payloads like "foo/c:/bar" or embedded separators smuggled through
// percent-decoding, the same defense build_and_validate_path applies.
func isSafeComponent(component string) bool {
	if component == "" {
		return false
	}
	if strings.ContainsAny(component, `/\`) {
		return false
	}
	if len(component) >= 2 && component[1] == ':' {
		return false
	}
	return true
}
