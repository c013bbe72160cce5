package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macsweep/internal/safety"
	"macsweep/internal/types"
)

func writeXcodeFile(t *testing.T, home, rel string, size int) {
	t.Helper()
	path := filepath.Join(home, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestXcodeTarget_Category(t *testing.T) {
	cat := types.Category{ID: "xcode", Name: "Xcode Artifacts"}
	s := NewXcodeTarget(cat, safety.NewValidator(safety.WithHome(t.TempDir())))
	assert.Equal(t, cat, s.Category())
}

func TestXcodeTarget_IsAvailable(t *testing.T) {
	home := t.TempDir()
	s := NewXcodeTarget(types.Category{ID: "xcode"}, safety.NewValidator(safety.WithHome(home)))
	assert.False(t, s.IsAvailable())

	require.NoError(t, os.MkdirAll(filepath.Join(home, "Library/Developer"), 0o755))
	assert.True(t, s.IsAvailable())
}

func TestXcodeTarget_ScanEmptyWhenUnavailable(t *testing.T) {
	s := NewXcodeTarget(types.Category{ID: "xcode"}, safety.NewValidator(safety.WithHome(t.TempDir())))
	result, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestXcodeTarget_Scan(t *testing.T) {
	home := t.TempDir()
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjA-abc/Build/app.o", 200)
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjB-def/index.db", 100)
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/notes.txt", 10)
	writeXcodeFile(t, home, "Library/Developer/Xcode/Archives/MyApp.xcarchive/Info.plist", 50)
	writeXcodeFile(t, home, "Library/Developer/Xcode/iOS DeviceSupport/16.0/dsc", 300)
	writeXcodeFile(t, home, "Library/Developer/CoreSimulator/Caches/dyld/cache1", 400)

	// Empty project directories carry no reclaimable bytes.
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Library/Developer/Xcode/DerivedData/Empty-xyz"), 0o755))

	// Pin levels so assertions hold regardless of where the test home
	// lives on the host filesystem.
	v := safety.NewValidator(
		safety.WithHome(home),
		safety.WithRules(
			pinRule("derived", filepath.Join(home, "Library/Developer/Xcode/DerivedData"), safety.LevelWarning),
			pinRule("archives", filepath.Join(home, "Library/Developer/Xcode/Archives"), safety.LevelCaution),
			pinRule("simulator", filepath.Join(home, "Library/Developer/CoreSimulator"), safety.LevelWarning),
		),
	)
	s := NewXcodeTarget(types.Category{ID: "xcode"}, v)
	result, err := s.Scan()
	require.NoError(t, err)

	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{
		"DerivedData: ProjA-abc",
		"DerivedData: ProjB-def",
		"Archives: MyApp.xcarchive",
		"iOS DeviceSupport: 16.0",
		"CoreSimulator Caches",
	}, names)

	assert.Equal(t, int64(1050), result.TotalSize)
	assert.Equal(t, int64(5), result.TotalFileCount)

	byName := make(map[string]types.CleanableItem, len(result.Items))
	for _, item := range result.Items {
		assert.True(t, item.IsDirectory, item.Name)
		byName[item.Name] = item
	}
	assert.Equal(t, safety.LevelWarning, byName["DerivedData: ProjA-abc"].Level)
	assert.Equal(t, safety.LevelWarning, byName["iOS DeviceSupport: 16.0"].Level)
	assert.Equal(t, safety.LevelWarning, byName["CoreSimulator Caches"].Level)
	assert.Equal(t, safety.LevelCaution, byName["Archives: MyApp.xcarchive"].Level)
}

func TestXcodeTarget_ScanDropsProtectedChildren(t *testing.T) {
	home := t.TempDir()
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjA-abc/app.o", 200)
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjB-def/index.db", 100)

	v := safety.NewValidator(
		safety.WithHome(home),
		safety.WithRules(pinRule("pin-projb", filepath.Join(home, "Library/Developer/Xcode/DerivedData/ProjB-def"), safety.LevelDanger)),
	)
	s := NewXcodeTarget(types.Category{ID: "xcode"}, v)

	result, err := s.Scan()
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "DerivedData: ProjA-abc", result.Items[0].Name)
}

func TestXcodeTarget_Clean(t *testing.T) {
	home := t.TempDir()
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjA-abc/app.o", 200)
	writeXcodeFile(t, home, "Library/Developer/Xcode/Archives/MyApp.xcarchive/Info.plist", 50)

	s := NewXcodeTarget(types.Category{ID: "xcode"}, safety.NewValidator(safety.WithHome(home)))

	items := []types.CleanableItem{
		{Path: filepath.Join(home, "Library/Developer/Xcode/DerivedData/ProjA-abc"), Name: "DerivedData: ProjA-abc", Size: 200},
		{Path: filepath.Join(home, "Library/Developer/Xcode/Archives/MyApp.xcarchive"), Name: "Archives: MyApp.xcarchive", Size: 50},
	}

	result, err := s.Clean(items)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CleanedItems)
	assert.Equal(t, int64(250), result.FreedSpace)
	assert.Zero(t, result.SkippedItems)
	assert.Empty(t, result.Errors)
	assert.NoDirExists(t, items[0].Path)
	assert.NoDirExists(t, items[1].Path)
}

func TestXcodeTarget_CleanSkipsProtectedItems(t *testing.T) {
	home := t.TempDir()
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjA-abc/app.o", 200)

	pinned := filepath.Join(home, "Library/Developer/Xcode/DerivedData/ProjA-abc")
	v := safety.NewValidator(
		safety.WithHome(home),
		safety.WithRules(pinRule("pin-proja", pinned, safety.LevelDanger)),
	)
	s := NewXcodeTarget(types.Category{ID: "xcode"}, v)

	result, err := s.Clean([]types.CleanableItem{{Path: pinned, Name: "DerivedData: ProjA-abc", Size: 200}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedItems)
	assert.Zero(t, result.CleanedItems)
	assert.Zero(t, result.FreedSpace)
	assert.DirExists(t, pinned)
}

func TestXcodeTarget_CleanReportsRemoveErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	home := t.TempDir()
	parent := filepath.Join(home, "Library/Developer/Xcode/DerivedData")
	writeXcodeFile(t, home, "Library/Developer/Xcode/DerivedData/ProjA-abc/app.o", 200)

	require.NoError(t, os.Chmod(parent, 0o555))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	s := NewXcodeTarget(types.Category{ID: "xcode"}, safety.NewValidator(safety.WithHome(home)))

	result, err := s.Clean([]types.CleanableItem{
		{Path: filepath.Join(parent, "ProjA-abc"), Name: "DerivedData: ProjA-abc", Size: 200},
	})
	require.NoError(t, err)

	assert.Zero(t, result.CleanedItems)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "DerivedData: ProjA-abc")
}
