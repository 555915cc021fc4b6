package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// pathRule is one enumerable file path check.
type pathRule struct {
	id       string
	severity Severity
	check    func(cfg Config, path string) (bool, string)
}

// pathRules fire in order; all applicable findings are returned.
var pathRules = []pathRule{
	{
		id:       "path.too_long",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if len(p) > cfg.MaxPathLength {
				return true, fmt.Sprintf("file path exceeds maximum length of %d", cfg.MaxPathLength)
			}
			return false, ""
		},
	},
	{
		id:       "path.traversal",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if hasTraversalSegment(p) {
				return true, "path contains a parent directory traversal segment (..)"
			}
			return false, ""
		},
	},
	{
		id:       "path.outside_root",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if !filepath.IsAbs(p) {
				return false, ""
			}
			if cfg.WorkspaceRoot == "" {
				return true, "absolute path rejected: no workspace root configured"
			}
			if outsideRoot(cfg.WorkspaceRoot, p) {
				return true, fmt.Sprintf("absolute path outside workspace root %s", cfg.WorkspaceRoot)
			}
			return false, ""
		},
	},
}

// ValidateFilePath checks an untrusted file path. Relative paths without
// traversal segments are accepted; absolute paths must sit under the
// configured workspace root. The check is lexical only: symlink resolution
// would require I/O and is the host's concern.
func (v *Validator) ValidateFilePath(path string) Findings {
	if path == "" {
		return Findings{{
			Severity: SeverityError,
			Message:  "file path cannot be empty",
			RuleID:   "path.empty",
		}}
	}
	var out Findings
	for _, r := range pathRules {
		if ok, msg := r.check(v.cfg, path); ok {
			out = append(out, Finding{Severity: r.severity, Message: msg, RuleID: r.id})
		}
	}
	return out
}

// hasTraversalSegment reports whether any path component equals "..",
// splitting on both separator styles. Substrings like "file..txt" do not
// count.
func hasTraversalSegment(p string) bool {
	segs := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, seg := range segs {
		if seg == ".." {
			return true
		}
	}
	return false
}

// outsideRoot reports whether the cleaned absolute path escapes root.
func outsideRoot(root, p string) bool {
	root = filepath.Clean(root)
	p = filepath.Clean(p)
	if root == string(filepath.Separator) {
		return false
	}
	if p == root {
		return false
	}
	return !strings.HasPrefix(p, root+string(filepath.Separator))
}
