package paths

import (
	"path"
	"path/filepath"
	"strings"
)

// EngineScheme prefixes every engine-relative resource path.
const EngineScheme = "res://"

// ProjectRelative returns p relative to projectRoot in slash form. The
// paths are compared as written first, then with symlinks resolved, so a
// root reached through a link still matches. A path that does not exist is
// resolved through its nearest existing parent. ok is false when p lies
// outside the root.
func ProjectRelative(projectRoot, p string) (string, bool) {
	if rel, ok := relInside(projectRoot, p); ok {
		return rel, true
	}
	root, err := filepath.EvalSymlinks(projectRoot)
	if err != nil {
		return "", false
	}
	return relInside(root, evalExisting(p))
}

func relInside(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// evalExisting resolves symlinks in the longest existing prefix of p.
func evalExisting(p string) string {
	var rest []string
	for dir := filepath.Clean(p); ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return p
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// NormalizePath converts every backslash to a forward slash, on any platform.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// JoinProjectPath joins a project root with a canonical (forward slash) path
func JoinProjectPath(projectRoot string, canonicalPath string) string {
	parts := strings.Split(NormalizePath(canonicalPath), "/")
	return filepath.Join(append([]string{projectRoot}, parts...)...)
}

// ToEngineRelative maps a source location to the engine's "res://" form.
//
// The project root prefix is cut from p, separators are normalized and the
// leading slash is dropped. A path that already carries the scheme is only
// re-normalized, so the function is idempotent. A path outside the root keeps
// its normalized form below the scheme.
func ToEngineRelative(projectRoot, p string) string {
	p = NormalizePath(p)
	if rest, ok := strings.CutPrefix(p, EngineScheme); ok {
		return EngineScheme + clean(rest)
	}

	root := strings.TrimRight(NormalizePath(projectRoot), "/")
	if root != "" && (p == root || strings.HasPrefix(p, root+"/")) {
		p = p[len(root):]
	}
	return EngineScheme + clean(p)
}

func clean(rel string) string {
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return ""
	}
	return strings.TrimLeft(path.Clean(rel), "/")
}

// ChangeExtension replaces the extension of p with ext (which includes its dot).
// Only the final path element is considered.
func ChangeExtension(p, ext string) string {
	slash := strings.LastIndex(p, "/")
	if dot := strings.LastIndex(p, "."); dot > slash {
		p = p[:dot]
	}
	return p + ext
}

// Ext returns the lower-cased extension of the final path element, dot included.
func Ext(p string) string {
	return strings.ToLower(path.Ext(NormalizePath(p)))
}
