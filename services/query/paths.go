package query

import "strings"

// Hits may come from a daemon on another OS, so both separators are honoured.
const pathSeparators = `/\`

// FileName returns the last element of path.
func FileName(path string) string {
	return path[strings.LastIndexAny(path, pathSeparators)+1:]
}

// ParentDir returns the directory holding path, keeping roots like "/" and `C:\` intact.
// A bare name has no parent and yields "".
func ParentDir(path string) string {
	i := strings.LastIndexAny(path, pathSeparators)
	if i < 0 {
		return ""
	}

	parent := path[:i]
	switch {
	case parent == "":
		return path[:1]
	case strings.HasSuffix(parent, ":"):
		return path[:i+1]
	default:
		return parent
	}
}
