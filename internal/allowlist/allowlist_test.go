package allowlist

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/exif-inspector/internal/integrity"
	"github.com/digimosa/exif-inspector/internal/metadata"
)

func TestNew_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("# trusted converters\nDarktable 4.6\n\n  Studio Raw Tool  \n"), 0o644))

	a, err := New(path)
	require.NoError(t, err)

	assert.True(t, a.Contains("darktable 4.6"))
	assert.True(t, a.Contains(" STUDIO RAW TOOL"))
	assert.False(t, a.Contains("# trusted converters"))
	assert.False(t, a.Contains("Darktable"))
	assert.Equal(t, []string{"Darktable 4.6", "Studio Raw Tool"}, a.Entries())
}

func TestNew_MissingFileStartsEmpty(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "none.txt"))
	require.NoError(t, err)
	assert.Empty(t, a.Entries())
}

func TestAdd_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.txt")
	a, err := New(path)
	require.NoError(t, err)

	require.NoError(t, a.Add("Capture One 23"))
	require.NoError(t, a.Add("capture one 23"))
	require.NoError(t, a.Add("   "))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Capture One 23\n", string(data))

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("CAPTURE ONE 23"))
}

func TestAdd_InMemory(t *testing.T) {
	a, err := New("")
	require.NoError(t, err)
	require.NoError(t, a.Add("GIMP 2.10"))
	assert.True(t, a.Contains("gimp 2.10"))
}

func TestAdd_Concurrent(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "allowlist.txt"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.Add("Lightroom Classic")
			_ = a.Contains("lightroom classic")
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"Lightroom Classic"}, a.Entries())
}

func TestAllowlist_SilencesSoftwareRule(t *testing.T) {
	a, err := New("")
	require.NoError(t, err)
	require.NoError(t, a.Add("Adobe Photoshop Lightroom Classic 13.1"))

	flat := metadata.FlatView{
		"Make":     "Nikon",
		"Model":    "Z 8",
		"DateTime": "2024:05:01 09:00:00",
		"Software": "Adobe Photoshop Lightroom Classic 13.1",
	}
	res := integrity.NewChecker(integrity.WithAllowlist(a)).Check(metadata.Views{Flat: flat})
	assert.Empty(t, res.Indicators)
	assert.False(t, res.IsModified)
}

func TestGeneration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.txt")
	a, err := New(path)
	require.NoError(t, err)
	empty := a.Generation()

	require.NoError(t, a.Add("Darktable 4.6"))
	added := a.Generation()
	assert.NotEqual(t, empty, added)

	require.NoError(t, a.Add("DARKTABLE 4.6"))
	assert.Equal(t, added, a.Generation(), "duplicates leave the generation alone")

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, added, reloaded.Generation())
}
