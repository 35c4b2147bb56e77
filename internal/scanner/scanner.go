package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// gitignoreCacheSize bounds how many per-directory gitignore matchers the
// scanner keeps resident (grounded on the teacher's scanner cache of the
// same shape and size).
const gitignoreCacheSize = 1000

// defaultExcludeDirs are always skipped regardless of caller-supplied patterns.
var defaultExcludeDirs = []string{".git", "node_modules", "vendor", "__pycache__", "dist", "build"}

// Scanner discovers indexable files under a collection's root directory.
type Scanner struct {
	gitignoreCache *lru.Cache[string, *gitignoreMatcher]
	cacheMu        sync.RWMutex
}

// New creates a Scanner with its gitignore matcher cache initialized.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignoreMatcher](gitignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitignore cache: %w", err)
	}
	return &Scanner{gitignoreCache: cache}, nil
}

// Scan walks opts.RootDir and streams every matching file on the returned
// channel, which is closed when the walk finishes. A per-file read error is
// sent as a ScanResult with Path and Err set and the walk continues; a
// terminal walk error is sent as a ScanResult with only Err set before the
// channel closes.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (<-chan ScanResult, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.walk(ctx, absRoot, opts, maxFileSize, results)
	}()
	return results, nil
}

func (s *Scanner) walk(ctx context.Context, absRoot string, opts ScanOptions, maxFileSize int64, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, p)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.excludeDir(relPath, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}

		if s.excludeFile(relPath, absRoot, opts) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if fi.Size() > maxFileSize {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			select {
			case results <- ScanResult{Path: relPath, Err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}

		if isBinary(data) {
			return nil
		}

		select {
		case results <- ScanResult{Path: relPath, Bytes: data, ModTime: fi.ModTime()}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Err: err}:
		case <-ctx.Done():
		}
	}
}

func (s *Scanner) excludeDir(relPath string, opts ScanOptions) bool {
	base := filepath.Base(relPath)
	for _, d := range defaultExcludeDirs {
		if base == d {
			return true
		}
	}
	for _, pattern := range opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (s *Scanner) excludeFile(relPath, absRoot string, opts ScanOptions) bool {
	base := filepath.Base(relPath)

	for _, pattern := range opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}

	if len(opts.IncludePatterns) > 0 && !matchesAny(relPath, base, opts.IncludePatterns) {
		return true
	}

	if opts.RespectGitignore && s.isGitignored(relPath, absRoot) {
		return true
	}

	return false
}

func matchesAny(relPath, base string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	return bytes.Contains(data[:n], []byte{0})
}

// isGitignored checks relPath against every .gitignore found between
// absRoot and the file's containing directory, root first so nested
// negations (a later, more specific rule) take precedence.
func (s *Scanner) isGitignored(relPath, absRoot string) bool {
	dirParts := strings.Split(filepath.Dir(relPath), "/")
	currentDir := absRoot
	currentBase := ""
	combined := newGitignoreMatcher()

	checkDir := func(dir, base string) {
		if m := s.getMatcher(dir, base); m != nil {
			combined.rules = append(combined.rules, m.rules...)
		}
	}

	checkDir(absRoot, "")
	for _, part := range dirParts {
		if part == "." || part == "" {
			continue
		}
		currentDir = filepath.Join(currentDir, part)
		if currentBase == "" {
			currentBase = part
		} else {
			currentBase = currentBase + "/" + part
		}
		checkDir(currentDir, currentBase)
	}

	return combined.match(relPath)
}

func (s *Scanner) getMatcher(dir, base string) *gitignoreMatcher {
	s.cacheMu.RLock()
	m, ok := s.gitignoreCache.Get(dir)
	s.cacheMu.RUnlock()
	if ok {
		return m
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err != nil {
		return nil
	}

	matcher := newGitignoreMatcher()
	if err := matcher.addFromFile(gitignorePath, base); err != nil {
		return nil
	}

	s.cacheMu.Lock()
	s.gitignoreCache.Add(dir, matcher)
	s.cacheMu.Unlock()

	return matcher
}

// InvalidateGitignoreCache clears every cached matcher, used by watch mode
// after a .gitignore file itself changes.
func (s *Scanner) InvalidateGitignoreCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gitignoreCache.Purge()
}
