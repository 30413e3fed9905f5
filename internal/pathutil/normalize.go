// Package pathutil implements the single normalization rule entry paths
// must pass through identically on write and read, so the "no .. escape"
// invariant holds from both directions.
//
// The algorithm mirrors the original codec's normalize_path /
// normalize_utf8path: resolve "." components, collapse ".." against
// already-accumulated normal components without crossing the root, and
// only keep a leading ".." when there is nothing left to pop.
package pathutil

import "strings"

// Normalize rewrites p into its normalized form using forward slashes,
// without touching the filesystem or requiring the path to exist.
func Normalize(p string) string {
	isAbs := strings.HasPrefix(p, "/")
	parts := strings.Split(p, "/")

	var out []string
	for _, part := range parts {
		switch part {
		case "", ".":
			// skip empty (consecutive slashes / split on absolute prefix)
			// and current-dir components.
		case "..":
			if n := len(out); n > 0 && out[n-1] != ".." {
				out = out[:n-1]
			} else if !isAbs {
				out = append(out, "..")
			}
			// an absolute path never accumulates a leading "..": there is
			// nothing above the root to escape to.
		default:
			out = append(out, part)
		}
	}

	joined := strings.Join(out, "/")
	if isAbs {
		return "/" + joined
	}
	return joined
}

// IsSafe reports whether the normalized form of p stays within the archive
// root, i.e. does not begin with a ".." component.
func IsSafe(p string) bool {
	n := Normalize(p)
	return n != ".." && !strings.HasPrefix(n, "../")
}
