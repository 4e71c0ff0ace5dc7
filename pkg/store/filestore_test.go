package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riotscrape/pkg/riot"
)

func testMatch(gameID, creation int64) riot.Match {
	return riot.Match{
		"gameId":       gameID,
		"gameCreation": creation,
		"gameDuration": int64(1800),
		"queueId":      420,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.True(t, strings.HasSuffix(content, "\n"), "store file must end with a newline")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")

	fs, err := Open(path, Options{})
	require.NoError(t, err)

	require.NoError(t, fs.StoreMatch(100, 5000, testMatch(100, 5000), nil))
	require.NoError(t, fs.StoreMatch(101, 6000, testMatch(101, 6000), riot.Timeline{}))

	assert.True(t, fs.HasMatch(100, 5000))
	assert.True(t, fs.HasMatch(101, 6000))
	assert.False(t, fs.HasMatch(102, 7000))
	require.NoError(t, fs.Close())

	// Reload and verify the dedup state was rebuilt from the file
	reloaded, err := Open(path, Options{Append: true})
	require.NoError(t, err)
	defer reloaded.Close()

	assert.True(t, reloaded.HasMatch(100, 5000))
	assert.True(t, reloaded.HasMatch(101, 6000))
	assert.False(t, reloaded.HasMatch(102, 7000))
}

func TestFileStoreTimelineSentinels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")

	fs, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, fs.StoreMatch(1, 1000, testMatch(1, 1000), nil))
	require.NoError(t, fs.StoreMatch(2, 2000, testMatch(2, 2000), riot.Timeline{}))
	require.NoError(t, fs.StoreMatch(3, 3000, testMatch(3, 3000), riot.Timeline{"frames": []interface{}{}}))
	require.NoError(t, fs.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)

	var records []map[string]interface{}
	for _, line := range lines {
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}

	// Not requested: explicit null, key present
	timeline, present := records[0]["timeline"]
	assert.True(t, present)
	assert.Nil(t, timeline)

	// Requested but unavailable: empty object, distinguishable from null
	timeline, present = records[1]["timeline"]
	assert.True(t, present)
	require.NotNil(t, timeline)
	assert.Empty(t, timeline)

	// Requested and available
	timeline = records[2]["timeline"]
	require.NotNil(t, timeline)
	assert.Contains(t, timeline, "frames")
}

func TestFileStoreReloadIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")

	fs, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, fs.StoreMatch(10, 1500, testMatch(10, 1500), nil))
	require.NoError(t, fs.StoreMatch(11, 2500, testMatch(11, 2500), nil))
	require.NoError(t, fs.Close())

	first, err := Open(path, Options{Append: true})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, Options{Append: true})
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.matches, second.matches)
	assert.Equal(t, first.minCreation, second.minCreation)
	assert.Equal(t, first.maxCreation, second.maxCreation)
}

func TestFileStoreSuggestSearchIntervals(t *testing.T) {
	t.Run("empty store searches everything", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "matches.jsonl")
		fs, err := Open(path, Options{Append: true, Continuous: true})
		require.NoError(t, err)
		defer fs.Close()

		intervals := fs.SuggestSearchIntervals("acc")
		require.Len(t, intervals, 1)
		assert.Nil(t, intervals[0].Begin)
		assert.Nil(t, intervals[0].End)
	})

	t.Run("continuous store resumes on both sides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "matches.jsonl")
		seed, err := Open(path, Options{})
		require.NoError(t, err)
		require.NoError(t, seed.StoreMatch(1, 1000, testMatch(1, 1000), nil))
		require.NoError(t, seed.StoreMatch(2, 2000, testMatch(2, 2000), nil))
		require.NoError(t, seed.Close())

		fs, err := Open(path, Options{Append: true, Continuous: true})
		require.NoError(t, err)
		defer fs.Close()

		intervals := fs.SuggestSearchIntervals("acc")
		require.Len(t, intervals, 2)
		assert.Nil(t, intervals[0].Begin)
		require.NotNil(t, intervals[0].End)
		assert.Equal(t, int64(1000), *intervals[0].End)
		require.NotNil(t, intervals[1].Begin)
		assert.Equal(t, int64(2000), *intervals[1].Begin)
		assert.Nil(t, intervals[1].End)
	})

	t.Run("append without continuous searches everything", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "matches.jsonl")
		seed, err := Open(path, Options{})
		require.NoError(t, err)
		require.NoError(t, seed.StoreMatch(1, 1000, testMatch(1, 1000), nil))
		require.NoError(t, seed.Close())

		fs, err := Open(path, Options{Append: true})
		require.NoError(t, err)
		defer fs.Close()

		intervals := fs.SuggestSearchIntervals("acc")
		require.Len(t, intervals, 1)
		assert.Nil(t, intervals[0].Begin)
		assert.Nil(t, intervals[0].End)
	})
}

func TestFileStoreMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")
	content := `{"gameId": 1, "gameCreation": 1000}
{"gameId": 2, "gameCreation": 2000}
{not valid json
{"gameId": 4, "gameCreation": 4000}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Open(path, Options{Append: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestFileStoreSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")
	content := `{"gameId": 1, "gameCreation": 1000}

{"gameId": 2, "gameCreation": 2000}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fs, err := Open(path, Options{Append: true})
	require.NoError(t, err)
	defer fs.Close()

	assert.True(t, fs.HasMatch(1, 1000))
	assert.True(t, fs.HasMatch(2, 2000))
}

func TestFileStoreHealsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"gameId": 1, "gameCreation": 1000}`), 0644))

	fs, err := Open(path, Options{Append: true})
	require.NoError(t, err)
	require.NoError(t, fs.StoreMatch(2, 2000, testMatch(2, 2000), nil))
	require.NoError(t, fs.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	for _, line := range lines {
		var record map[string]interface{}
		assert.NoError(t, json.Unmarshal([]byte(line), &record))
	}
}

func TestFileStoreTruncatesWithoutAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"gameId": 1, "gameCreation": 1000}`+"\n"), 0644))

	fs, err := Open(path, Options{})
	require.NoError(t, err)
	defer fs.Close()

	assert.False(t, fs.HasMatch(1, 1000))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
