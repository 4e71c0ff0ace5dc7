package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"riotscrape/pkg/logger"
	"riotscrape/pkg/riot"
)

// timelineField is the extra field attached to each persisted match record
const timelineField = "timeline"

// scanBufferSize bounds a single stored record; match documents run well past
// bufio.Scanner's 64KB default.
const scanBufferSize = 16 * 1024 * 1024

// Options controls how a FileStore opens its backing file
type Options struct {
	// Append keeps existing records and replays them into the dedup state
	// instead of truncating the file.
	Append bool

	// Continuous makes SuggestSearchIntervals assume existing records form
	// one unbroken time range, so only the ranges strictly before and after
	// it are searched. With a gapped file the middle is never searched; that
	// contiguity is the caller's responsibility.
	Continuous bool
}

// storedRecord is the minimal view of a persisted match line needed to
// rebuild the dedup and resume state.
type storedRecord struct {
	GameID       int64 `json:"gameId"`
	GameCreation int64 `json:"gameCreation"`
}

// FileStore persists matches as newline-delimited JSON, one match record per
// line with the timeline attached under the "timeline" field. Every write is
// flushed before returning, so a crash leaves a valid prefix of complete
// records.
type FileStore struct {
	file         *os.File
	opts         Options
	matches      map[int64]struct{}
	minCreation  int64
	maxCreation  int64
	hasMatches   bool
	needsNewline bool
	logger       logger.Logger
}

// Open opens or creates the store file at path. In append mode existing
// records are replayed to rebuild the known-match set and the observed
// creation-time range; otherwise the file is truncated.
func Open(path string, opts Options) (*FileStore, error) {
	flags := os.O_RDWR | os.O_CREATE
	if !opts.Append {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}

	fs, err := NewFileStore(file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	return fs, nil
}

// NewFileStore wraps an already opened file. The file must be positioned at
// the start; ownership passes to the store, which closes it on Close.
func NewFileStore(file *os.File, opts Options) (*FileStore, error) {
	fs := &FileStore{
		file:    file,
		opts:    opts,
		matches: make(map[int64]struct{}),
		logger:  logger.GetLogger(),
	}

	if opts.Append {
		if err := fs.load(); err != nil {
			return nil, err
		}
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("failed to seek to end of store file: %w", err)
	}
	return fs, nil
}

// load replays the existing file content into the in-memory state and probes
// whether the content ends with a newline.
func (fs *FileStore) load() error {
	if _, err := fs.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind store file: %w", err)
	}

	scanner := bufio.NewScanner(fs.file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record storedRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("%s: malformed match record at line %d: %w", fs.file.Name(), lineno, err)
		}
		fs.remember(record.GameID, record.GameCreation)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}

	// A pre-existing file may lack the trailing newline; the next write then
	// has to insert one so records stay one per line.
	info, err := fs.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat store file: %w", err)
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := fs.file.ReadAt(last, info.Size()-1); err != nil {
			return fmt.Errorf("failed to read last byte of store file: %w", err)
		}
		fs.needsNewline = last[0] != '\n'
	}

	fs.logger.DebugWithFields("store file loaded", map[string]interface{}{
		"path":    fs.file.Name(),
		"matches": len(fs.matches),
	})
	return nil
}

// remember records a known match and widens the observed creation-time range
func (fs *FileStore) remember(gameID, creation int64) {
	fs.matches[gameID] = struct{}{}
	if !fs.hasMatches || creation < fs.minCreation {
		fs.minCreation = creation
	}
	if !fs.hasMatches || creation > fs.maxCreation {
		fs.maxCreation = creation
	}
	fs.hasMatches = true
}

// SuggestSearchIntervals implements Store. In continuous mode with prior
// matches it returns the ranges strictly before and after the stored block;
// otherwise the whole timeline is searched.
func (fs *FileStore) SuggestSearchIntervals(accountID string) []SearchInterval {
	if fs.opts.Continuous && fs.hasMatches {
		return []SearchInterval{
			{Begin: nil, End: Millis(fs.minCreation)},
			{Begin: Millis(fs.maxCreation), End: nil},
		}
	}
	return []SearchInterval{{}}
}

// HasMatch implements Store
func (fs *FileStore) HasMatch(gameID, timestamp int64) bool {
	_, ok := fs.matches[gameID]
	return ok
}

// StoreMatch implements Store. The record is written as one JSON line with
// the timeline attached and the file is synced before returning.
func (fs *FileStore) StoreMatch(gameID, timestamp int64, match riot.Match, timeline riot.Timeline) error {
	record := make(riot.Match, len(match)+1)
	for k, v := range match {
		record[k] = v
	}
	// A nil timeline serializes as null, marking "not requested"; an empty
	// one serializes as {} for "requested but unavailable".
	record[timelineField] = timeline

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode match %d: %w", gameID, err)
	}

	if fs.needsNewline {
		if _, err := fs.file.WriteString("\n"); err != nil {
			return fmt.Errorf("failed to write match %d: %w", gameID, err)
		}
		fs.needsNewline = false
	}
	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write match %d: %w", gameID, err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync store file: %w", err)
	}

	fs.remember(gameID, timestamp)
	return nil
}

// Close flushes and closes the backing file
func (fs *FileStore) Close() error {
	if err := fs.file.Sync(); err != nil {
		fs.file.Close()
		return err
	}
	return fs.file.Close()
}
