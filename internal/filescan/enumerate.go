package filescan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otw-tahir/otw-string-finder/internal/budget"
)

// deniedExtensions lists file types that are never scanned: media, archives,
// fonts, binaries and compiled assets.
var deniedExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".webp": {}, ".avif": {}, ".svg": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
	".wav": {}, ".ogg": {}, ".flac": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".rar": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".bin": {}, ".o": {},
	".a": {}, ".class": {}, ".pyc": {}, ".jar": {}, ".wasm": {},
	".pdf": {}, ".map": {},
}

// deniedSegments lists path segments whose subtrees are skipped entirely.
var deniedSegments = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	".git":         {},
	".svn":         {},
	".hg":          {},
	"cache":        {},
}

// minified asset suffixes, checked in addition to the extension denylist.
var deniedSuffixes = []string{".min.js", ".min.css"}

var errWalkTruncated = errors.New("walk truncated")

// walkCheckStride is how many admitted files the walk processes between
// governor checks. Small corpora always enumerate fully; huge listings still
// yield a usable partial list.
const walkCheckStride = 256

// Enumerator produces the ordered unit list for a file search.
type Enumerator struct {
	root         string
	maxFileBytes int64 // 0 = no ceiling
}

// NewEnumerator creates an Enumerator over the corpus root.
func NewEnumerator(root string, maxFileBytes int64) *Enumerator {
	return &Enumerator{root: root, maxFileBytes: maxFileBytes}
}

// Root returns the corpus root directory.
func (e *Enumerator) Root() string {
	return e.root
}

// ResolveScope turns a scope selector into an absolute directory. An empty
// scope is the whole corpus; otherwise scope is a path relative to the root
// and must stay inside it.
func (e *Enumerator) ResolveScope(scope string) (string, error) {
	if scope == "" {
		return e.root, nil
	}
	if filepath.IsAbs(scope) {
		return "", fmt.Errorf("scope must be relative to the corpus root: %s", scope)
	}
	dir := filepath.Join(e.root, scope)
	rel, err := filepath.Rel(e.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("scope escapes the corpus root: %s", scope)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("scope not found: %s", scope)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scope is not a directory: %s", scope)
	}
	return dir, nil
}

// Enumerate walks the scoped tree and returns scannable file paths relative
// to the corpus root, in walk order. The listing is budget-guarded against
// very large trees: every walkCheckStride admitted files the governor may
// abort the walk with truncated=true — a partial listing, not an error.
func (e *Enumerator) Enumerate(scope string, gov *budget.Governor) (paths []string, truncated bool, err error) {
	dir, err := e.ResolveScope(scope)
	if err != nil {
		return nil, false, err
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if _, denied := deniedSegments[strings.ToLower(info.Name())]; denied {
				return filepath.SkipDir
			}
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if !Scannable(path) {
			return nil
		}
		if e.maxFileBytes > 0 && info.Size() > e.maxFileBytes {
			return nil
		}

		rel, relErr := filepath.Rel(e.root, path)
		if relErr != nil {
			return nil
		}
		paths = append(paths, rel)
		if len(paths)%walkCheckStride == 0 && gov.ShouldYield() {
			return errWalkTruncated
		}
		return nil
	})

	if errors.Is(walkErr, errWalkTruncated) {
		return paths, true, nil
	}
	if walkErr != nil {
		return nil, false, fmt.Errorf("walking %s: %w", dir, walkErr)
	}
	return paths, false, nil
}

// Scannable reports whether a file name passes the extension and
// minified-asset denylists.
func Scannable(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range deniedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	if _, denied := deniedExtensions[filepath.Ext(name)]; denied {
		return false
	}
	return true
}
