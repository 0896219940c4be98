// Package query defines the search query value type and the predicate
// evaluation applied to filesystem entries during traversal.
package query

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// EntryType classifies a filesystem entry for type filtering.
type EntryType int

const (
	// TypeAny matches every entry type.
	TypeAny EntryType = iota
	// TypeFile matches regular files.
	TypeFile
	// TypeDir matches directories.
	TypeDir
	// TypeSymlink matches symbolic links.
	TypeSymlink
)

// String returns the single-letter form used on the CLI (f, d, l).
func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "f"
	case TypeDir:
		return "d"
	case TypeSymlink:
		return "l"
	default:
		return "any"
	}
}

// ParseEntryType converts a CLI type flag value to an EntryType.
// Accepts "f", "d", "l" or empty (any).
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TypeAny, nil
	case "f", "file":
		return TypeFile, nil
	case "d", "dir", "directory":
		return TypeDir, nil
	case "l", "link", "symlink":
		return TypeSymlink, nil
	default:
		return TypeAny, fmt.Errorf("invalid type %q: must be one of f, d, l", s)
	}
}

// SearchQuery holds the roots, match predicates, and traversal options for
// one search run. It is constructed once from CLI input merged with config
// defaults and is not modified afterwards.
type SearchQuery struct {
	// Roots are the starting directories (or files) for traversal.
	Roots []string

	// Name is a glob pattern applied to the entry's base name.
	// Empty matches every name.
	Name string
	// IgnoreCase makes the name pattern case-insensitive.
	IgnoreCase bool
	// Type restricts matches to a single entry type (TypeAny = no filter).
	Type EntryType
	// Extensions restricts matches to files with one of these extensions
	// (leading dot optional, case-insensitive).
	Extensions []string
	// MinSize and MaxSize bound the entry size in bytes (0 = unbounded).
	MinSize int64
	MaxSize int64
	// ModifiedSince, when non-zero, requires the entry's modification time
	// to be at or after this instant.
	ModifiedSince time.Time

	// MaxDepth limits traversal depth. Depth 0 is the root argument itself;
	// a negative value means unlimited.
	MaxDepth int
	// Exclude holds glob patterns; entries whose base name matches any
	// pattern are skipped entirely (directories are not descended into).
	Exclude []string
	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool
	// SkipHidden skips entries whose name starts with a dot.
	SkipHidden bool
}

// MatchResult is a discovered path plus the metadata that satisfied the
// query. Results are streamed in traversal order.
type MatchResult struct {
	Path    string
	Type    EntryType
	Size    int64
	ModTime time.Time
	// Depth is the number of path elements below the root argument.
	Depth int
}

// Validate checks the query before traversal begins: every root must exist
// and every glob pattern must be syntactically valid. Invalid input here is
// fatal to the run, per the error handling design.
func (q *SearchQuery) Validate() error {
	if len(q.Roots) == 0 {
		return fmt.Errorf("at least one root path is required")
	}
	for _, root := range q.Roots {
		if _, err := os.Lstat(root); err != nil {
			return fmt.Errorf("invalid root %s: %w", root, err)
		}
	}
	if q.Name != "" {
		if _, err := path.Match(q.Name, "probe"); err != nil {
			return fmt.Errorf("invalid name pattern %q: %w", q.Name, err)
		}
	}
	for _, pattern := range q.Exclude {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	if q.MinSize > 0 && q.MaxSize > 0 && q.MinSize > q.MaxSize {
		return fmt.Errorf("min-size %d exceeds max-size %d", q.MinSize, q.MaxSize)
	}
	return nil
}

// Excluded reports whether the base name matches any exclude pattern.
// Patterns were validated up front, so match errors cannot occur here.
func (q *SearchQuery) Excluded(name string) bool {
	for _, pattern := range q.Exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Matches evaluates every predicate against a candidate entry.
// name is the entry's base name; the remaining fields come from Lstat.
func (q *SearchQuery) Matches(name string, entryType EntryType, size int64, modTime time.Time) bool {
	if q.Type != TypeAny && entryType != q.Type {
		return false
	}

	if q.Name != "" {
		pattern, candidate := q.Name, name
		if q.IgnoreCase {
			pattern = strings.ToLower(pattern)
			candidate = strings.ToLower(candidate)
		}
		if ok, _ := path.Match(pattern, candidate); !ok {
			return false
		}
	}

	if len(q.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(name))
		found := false
		for _, want := range q.Extensions {
			if !strings.HasPrefix(want, ".") {
				want = "." + want
			}
			if strings.ToLower(want) == ext {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Size filters apply to regular files only; directory sizes are
	// filesystem-dependent and not meaningful to users.
	if entryType == TypeFile {
		if q.MinSize > 0 && size < q.MinSize {
			return false
		}
		if q.MaxSize > 0 && size > q.MaxSize {
			return false
		}
	} else if q.MinSize > 0 || q.MaxSize > 0 {
		return false
	}

	if !q.ModifiedSince.IsZero() && modTime.Before(q.ModifiedSince) {
		return false
	}

	return true
}

// EntryTypeOf classifies a file mode the way the type filter expects.
// Symlinks are reported as TypeSymlink only when the mode comes from Lstat.
func EntryTypeOf(mode os.FileMode) EntryType {
	switch {
	case mode&os.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsDir():
		return TypeDir
	case mode.IsRegular():
		return TypeFile
	default:
		return TypeAny
	}
}
