// Package walker implements the traversal-and-match engine: a deterministic
// depth-first walk over one or more roots that streams matching entries to a
// callback as they are found.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/findr/internal/query"
)

// Logger receives non-fatal traversal diagnostics (permission errors,
// symlink cycles). Implementations must be safe for reuse across walks.
type Logger interface {
	Warn(format string, args ...interface{})
}

// EmitFunc receives each match in traversal order. Returning an error
// aborts the walk and the error is propagated to the caller.
type EmitFunc func(query.MatchResult) error

// Engine walks the directory trees named by a SearchQuery and evaluates
// every entry against the query's predicates.
//
// The walk is single-threaded and depth-first with lexicographic sibling
// order, so two walks over the same filesystem snapshot produce identical
// result sequences. The only mutable state is the visited-directory set
// used for symlink cycle detection.
type Engine struct {
	query    *query.SearchQuery
	log      Logger
	visited  map[string]bool
	warnings int
	skipped  []string
}

// New creates an Engine for the given query. log may be nil, in which case
// diagnostics are counted but not reported.
func New(q *query.SearchQuery, log Logger) *Engine {
	return &Engine{
		query:   q,
		log:     log,
		visited: make(map[string]bool),
	}
}

// Warnings returns the number of non-fatal problems encountered during the
// last walk (skipped subtrees, unreadable entries).
func (e *Engine) Warnings() int {
	return e.warnings
}

// Skipped returns the paths that produced warnings during the last walk,
// in the order they were encountered.
func (e *Engine) Skipped() []string {
	return e.skipped
}

// Walk traverses every root in order and streams matches to emit.
//
// Roots that cannot be read are fatal; errors below a root are recovered
// locally (skip and warn). The walk checks ctx at every directory boundary
// and returns ctx.Err() once the context is cancelled.
func (e *Engine) Walk(ctx context.Context, emit EmitFunc) error {
	e.warnings = 0
	e.skipped = nil
	e.visited = make(map[string]bool)

	for _, root := range e.query.Roots {
		info, err := os.Lstat(root)
		if err != nil {
			return fmt.Errorf("invalid root %s: %w", root, err)
		}
		// When following symlinks, a root that is itself a symlink is
		// walked as the entry it names, matching find -L's treatment of
		// command-line arguments. Dangling links keep their link identity.
		if e.query.FollowSymlinks && info.Mode()&os.ModeSymlink != 0 {
			if resolved, err := os.Stat(root); err == nil {
				info = resolved
			}
		}
		if err := e.walkEntry(ctx, filepath.Clean(root), info, 0, emit); err != nil {
			return err
		}
	}
	return nil
}

// walkEntry evaluates a single entry and, for directories, recurses into
// its children in lexicographic order. depth 0 is the root argument itself.
func (e *Engine) walkEntry(ctx context.Context, path string, info os.FileInfo, depth int, emit EmitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.Base(path)

	// Roots named on the command line are always eligible; hidden and
	// exclude filters apply only to entries discovered below them.
	if depth > 0 {
		if e.query.SkipHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if e.query.Excluded(name) {
			return nil
		}
	}

	entryType := query.EntryTypeOf(info.Mode())
	if e.query.Matches(name, entryType, info.Size(), info.ModTime()) {
		result := query.MatchResult{
			Path:    path,
			Type:    entryType,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Depth:   depth,
		}
		if err := emit(result); err != nil {
			return err
		}
	}

	isDir := info.IsDir()
	if entryType == query.TypeSymlink && e.query.FollowSymlinks {
		// Stat follows the link; an unresolvable target is skipped quietly
		// since dangling links are routine.
		target, err := os.Stat(path)
		if err == nil && target.IsDir() {
			isDir = true
		}
	}
	if !isDir {
		return nil
	}

	// Children would exceed the depth limit, so do not descend. The entry
	// itself was already evaluated above.
	if e.query.MaxDepth >= 0 && depth >= e.query.MaxDepth {
		return nil
	}

	if e.query.FollowSymlinks {
		if cycle := e.markVisited(path); cycle {
			e.warnf(path, "symlink cycle detected at %s, skipping subtree", path)
			return nil
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		e.warnf(path, "cannot read directory %s: %v", path, err)
		return nil
	}

	// os.ReadDir returns entries sorted by name, which gives the walk its
	// deterministic lexicographic sibling order.
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		childInfo, err := entry.Info()
		if err != nil {
			e.warnf(child, "cannot stat %s: %v", child, err)
			continue
		}
		if err := e.walkEntry(ctx, child, childInfo, depth+1, emit); err != nil {
			return err
		}
	}
	return nil
}

// markVisited records the canonical path of a directory about to be
// descended into. Returns true if the directory was already visited,
// which means a symlink cycle (or a diamond) leads back to it.
func (e *Engine) markVisited(path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Fall back to the literal path; worst case a cycle through an
		// unresolvable link is caught one level later.
		resolved = path
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	if e.visited[resolved] {
		return true
	}
	e.visited[resolved] = true
	return false
}

// warnf records path as skipped and routes the diagnostic to the logger.
func (e *Engine) warnf(path, format string, args ...interface{}) {
	e.warnings++
	e.skipped = append(e.skipped, path)
	if e.log != nil {
		e.log.Warn(format, args...)
	}
}
