package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
	"github.com/qfs-dev/qfs/internal/scanner"
)

// IndexCollection walks a collection's root directory and drives every
// discovered file through scan/hash/commit, then deactivates any
// previously-active document whose path no longer appeared.
func (ix *Indexer) IndexCollection(ctx context.Context, collection *model.Collection, opts scanner.ScanOptions) (*Result, error) {
	opts.RootDir = collection.RootPath
	if len(opts.IncludePatterns) == 0 {
		opts.IncludePatterns = collection.Patterns
	}

	results, err := ix.scanner.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	seen := make(map[string]bool)

	for r := range results {
		if r.Err != nil {
			ix.logger.Warn("skipping file after read error",
				slog.String("collection", collection.Name),
				slog.String("path", r.Path),
				slog.String("error", r.Err.Error()))
			res.FailedFiles = append(res.FailedFiles, FileFailure{Path: r.Path, Err: r.Err})
			continue
		}

		res.Scanned++
		seen[r.Path] = true

		changed, dbErr := ix.commitFile(ctx, collection.Name, r)
		if dbErr != nil {
			if qerrors.Is(dbErr, qerrors.Database) {
				return res, dbErr
			}
			ix.logger.Warn("skipping file after parse error",
				slog.String("collection", collection.Name),
				slog.String("path", r.Path),
				slog.String("error", dbErr.Error()))
			res.FailedFiles = append(res.FailedFiles, FileFailure{Path: r.Path, Err: dbErr})
			continue
		}
		switch changed {
		case fileInserted:
			res.Inserted++
		case fileUpdated:
			res.Updated++
		case fileUnchanged:
			res.Skipped++
		}
	}

	deactivated, err := ix.deactivateMissing(ctx, collection.Name, seen)
	if err != nil {
		return res, err
	}
	res.Deactivated = deactivated

	return res, nil
}

type commitOutcome int

const (
	fileUnchanged commitOutcome = iota
	fileInserted
	fileUpdated
)

// commitFile runs one file through the hash/commit phases of the pipeline.
func (ix *Indexer) commitFile(ctx context.Context, collection string, r scanner.ScanResult) (commitOutcome, error) {
	hash := hashBytes(r.Bytes)

	existing, err := ix.store.GetDocumentByPath(ctx, collection, r.Path)
	alreadyIndexed := err == nil && existing.Active
	if err != nil && !qerrors.Is(err, qerrors.NotFound) {
		return fileUnchanged, err
	}

	if alreadyIndexed && existing.Hash == hash {
		return fileUnchanged, nil
	}

	contentType := contentTypeFor(r.Path, r.Bytes)
	if err := ix.store.InsertContent(ctx, hash, r.Bytes, contentType); err != nil {
		return fileUnchanged, err
	}

	title := extractTitle(r.Path, r.Bytes)
	preview := previewText(r.Bytes)
	fileType := strings.TrimPrefix(filepath.Ext(r.Path), ".")

	if _, err := ix.store.UpsertDocument(ctx, collection, r.Path, title, hash, fileType, preview); err != nil {
		return fileUnchanged, err
	}

	if alreadyIndexed {
		return fileUpdated, nil
	}
	return fileInserted, nil
}

// deactivateMissing deactivates every active document in collection whose
// path was not encountered by this scan.
func (ix *Indexer) deactivateMissing(ctx context.Context, collection string, seen map[string]bool) (int, error) {
	active, err := ix.store.ListActiveDocuments(ctx, collection)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, doc := range active {
		if seen[doc.Path] {
			continue
		}
		if err := ix.store.DeactivateDocument(ctx, collection, doc.Path); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// previewText derives the preview body committed to the FTS shadow row:
// the raw content, decoded as UTF-8 and bounded to previewMaxChars.
func previewText(content []byte) string {
	text := string(content)
	if len(text) <= previewMaxChars {
		return text
	}
	return text[:previewMaxChars]
}

// contentTypeFor classifies a file's MIME-ish content type from its
// extension, falling back to a binary/text sniff.
func contentTypeFor(path string, content []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".go", ".py", ".js", ".ts", ".rs", ".java", ".c", ".cpp", ".h", ".rb", ".sh":
		return "text/code"
	case ".json", ".yaml", ".yml", ".toml":
		return "text/config"
	}
	if looksBinary(content) {
		return "application/octet-stream"
	}
	return "text/plain"
}

func looksBinary(content []byte) bool {
	checkLen := 512
	if len(content) < checkLen {
		checkLen = len(content)
	}
	for i := 0; i < checkLen; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
