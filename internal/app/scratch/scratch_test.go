package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "whisper-stt/internal/app/errors"
)

func newTestArea(t *testing.T) *Area {
	t.Helper()
	area, err := New(filepath.Join(t.TempDir(), "temp_audio"))
	require.NoError(t, err)
	return area
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "temp_audio")

	area, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, area.Dir())

	// existing directory is fine
	_, err = New(dir)
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"recording.wav", "recording.wav", true},
		{"  clip.mp3 ", "  clip.mp3 ", true},
		{"../../etc/passwd", "passwd", true},
		{`C:\Users\me\voice.webm`, "voice.webm", true},
		{"", "", false},
		{" ", " ", true},
		{"dir/ ", " ", true},
		{".", "", false},
		{"..", "", false},
		{"/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := SanitizeFilename(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreate_NamesFileWithUUIDPrefix(t *testing.T) {
	area := newTestArea(t)

	f, err := area.Create("recording.wav")
	require.NoError(t, err)
	defer f.Remove()

	name := filepath.Base(f.Path)
	assert.Equal(t, area.Dir(), filepath.Dir(f.Path))
	assert.True(t, strings.HasSuffix(name, "_recording.wav"))
	assert.Equal(t, f.ID.String(), name[:36])
	assert.True(t, isScratchName(name))
}

func TestCreate_DistinctFilesForSameName(t *testing.T) {
	area := newTestArea(t)

	a, err := area.Create("same.wav")
	require.NoError(t, err)
	defer a.Remove()
	b, err := area.Create("same.wav")
	require.NoError(t, err)
	defer b.Remove()

	assert.NotEqual(t, a.Path, b.Path)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreate_IsExclusive(t *testing.T) {
	area := newTestArea(t)
	fixed := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	area.newID = func() uuid.UUID { return fixed }

	first, err := area.Create("a.wav")
	require.NoError(t, err)
	defer first.Remove()

	_, err = area.Create("a.wav")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrFileCreateFailed))
	assert.True(t, errors.Is(err, os.ErrExist))
}

func TestFile_WriteAndRemove(t *testing.T) {
	area := newTestArea(t)

	f, err := area.Create("clip.wav")
	require.NoError(t, err)

	n, err := f.Write(strings.NewReader("RIFF....WAVE"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	content, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF....WAVE", string(content))

	// second write is rejected, the handle is already released
	_, err = f.Write(strings.NewReader("more"))
	assert.ErrorIs(t, err, apperrors.ErrFileWriteFailed)

	require.NoError(t, f.Remove())
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	// idempotent
	assert.NoError(t, f.Remove())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestFile_WriteFailureStillRemovable(t *testing.T) {
	area := newTestArea(t)

	f, err := area.Create("broken.wav")
	require.NoError(t, err)

	_, err = f.Write(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileWriteFailed)
	assert.Contains(t, err.Error(), "connection reset by peer")

	require.NoError(t, f.Remove())
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_RemoveWithoutWrite(t *testing.T) {
	area := newTestArea(t)

	f, err := area.Create("never-written.wav")
	require.NoError(t, err)

	require.NoError(t, f.Remove())
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_RemoveAlreadyDeleted(t *testing.T) {
	area := newTestArea(t)

	f, err := area.Create("gone.wav")
	require.NoError(t, err)
	_, err = f.Write(strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, os.Remove(f.Path))
	assert.NoError(t, f.Remove())
}

func TestSweep(t *testing.T) {
	area := newTestArea(t)

	stale, err := area.Create("stale.wav")
	require.NoError(t, err)
	_, err = stale.Write(strings.NewReader("x"))
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale.Path, old, old))

	fresh, err := area.Create("fresh.wav")
	require.NoError(t, err)
	_, err = fresh.Write(strings.NewReader("x"))
	require.NoError(t, err)

	foreign := filepath.Join(area.Dir(), "notes.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0644))
	require.NoError(t, os.Chtimes(foreign, old, old))

	removed, err := area.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh.Path)
	assert.NoError(t, err)
	_, err = os.Stat(foreign)
	assert.NoError(t, err)
}

func TestIsScratchName(t *testing.T) {
	assert.True(t, isScratchName("0f8fad5b-d9cb-469f-a165-70867728950e_a.wav"))
	assert.False(t, isScratchName("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.False(t, isScratchName("not-a-uuid-at-all-but-36-chars-long_a.wav"))
	assert.False(t, isScratchName("recording.wav"))
}
