package harness

import (
	"path/filepath"
	"strings"
)

// GenerationsRoot is the fixed namespace directory under which relative
// project paths are placed. Absolute paths are assumed intentional and are
// never namespaced.
const GenerationsRoot = "generations"

// specExtension is the fixed document extension stripped when deriving a
// project name from a spec filename.
const specExtension = ".txt"

// specSuffix is the suffix token stripped (after the extension) when
// deriving a project name from a spec filename, so that
// "monitoring_dashboard_spec.txt" yields "monitoring_dashboard".
const specSuffix = "_spec"

// ResolveProjectDir turns user-supplied directory/name/spec arguments into
// one canonical project path. Exactly one input determines the result, in
// precedence order: explicit directory, explicit project name, derivation
// from the spec filename. The function is pure and never touches the
// filesystem.
func ResolveProjectDir(dir, name, specFile string) string {
	var path string
	switch {
	case dir != "":
		path = dir
	case name != "":
		path = name
	default:
		path = deriveProjectName(specFile)
	}
	return namespacePath(path)
}

// deriveProjectName strips the fixed extension and a trailing "_spec" token
// from a spec filename. A filename without the suffix token degrades
// gracefully to the filename with only the extension stripped.
func deriveProjectName(specFile string) string {
	name := strings.TrimSuffix(specFile, specExtension)
	name = strings.TrimSuffix(name, specSuffix)
	return name
}

// namespacePath prepends the generations root to relative paths that are
// not already under it.
func namespacePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if path == GenerationsRoot || strings.HasPrefix(path, GenerationsRoot+string(filepath.Separator)) {
		return path
	}
	return filepath.Join(GenerationsRoot, path)
}
