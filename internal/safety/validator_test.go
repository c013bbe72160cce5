package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHomeValidator(rules ...Rule) *Validator {
	return NewValidator(WithHome(testHome), WithRules(rules...))
}

// levelRule pins every path at or below prefix to the given level.
func levelRule(name, prefix string, level Level) Rule {
	return Rule{
		Name: name,
		Evaluate: func(p string) (Level, bool) {
			if p == prefix || strings.HasPrefix(p, prefix+"/") {
				return level, true
			}
			return 0, false
		},
	}
}

func TestClassify_ProtectedSystemPaths(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		"/System/Library/Fonts",
		"/usr/bin/ls",
		"/usr/sbin/diskutil",
		"/bin/bash",
		"/sbin/mount",
		"/private/var/db/dslocal",
		"/private/var/folders/xx/temp",
		"/Library/Extensions/SomeDriver.kext",
	}
	for _, p := range paths {
		c := v.Classify(p)
		assert.Equal(t, LevelDanger, c.Level, p)
		assert.Equal(t, "Protected system or user path", c.Reason, p)
	}
}

func TestClassify_ProtectedUserData(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		testHome + "/Library/Keychains/login.keychain-db",
		testHome + "/Library/Application Support/SomeApp",
		testHome + "/Library/Mail/V9/Mailboxes",
		testHome + "/Library/Messages/chat.db",
		testHome + "/Library/Preferences/com.apple.finder.plist",
		testHome + "/Library/Safari/Bookmarks.plist",
	}
	for _, p := range paths {
		assert.Equal(t, LevelDanger, v.Classify(p).Level, p)
	}
}

func TestClassify_UserDocumentsAreDanger(t *testing.T) {
	v := newHomeValidator()

	assert.Equal(t, LevelDanger, v.Classify(testHome+"/Documents/important.doc").Level)
	assert.Equal(t, LevelDanger, v.Classify(testHome+"/Desktop/notes.txt").Level)
	assert.Equal(t, LevelDanger, v.Classify(testHome+"/Downloads/installer.dmg").Level)
}

func TestClassify_WarningPaths(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		testHome + "/Library/Containers/com.example.mailclient",
		testHome + "/Library/Group Containers/group.com.example",
		"/Library/Caches/com.apple.installer",
		testHome + "/Library/Developer/Xcode/iOS DeviceSupport/16.0",
		testHome + "/.docker/data",
	}
	for _, p := range paths {
		c := v.Classify(p)
		assert.Equal(t, LevelWarning, c.Level, p)
		assert.Equal(t, "Requires significant time to rebuild or re-download", c.Reason, p)
	}
}

func TestClassify_WarningGlobs(t *testing.T) {
	v := newHomeValidator()

	// A com.apple.* basename classifies as Warning wherever it lives.
	assert.Equal(t, LevelWarning, v.Classify("/opt/data/com.apple.dock.plist").Level)

	// Application bundle binaries.
	assert.Equal(t, LevelWarning,
		v.Classify("/Applications/Safari.app/Contents/MacOS/Safari").Level)

	// Glob patterns outrank the caution table.
	assert.Equal(t, LevelWarning,
		v.Classify(testHome+"/Library/Caches/com.apple.music").Level)
}

func TestClassify_CautionPaths(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		testHome + "/Library/Caches/com.someapp",
		testHome + "/Library/Logs/DiagnosticReports",
		testHome + "/Library/Saved Application State/com.app.saved",
		testHome + "/.Trash/deleted_file",
	}
	for _, p := range paths {
		c := v.Classify(p)
		assert.Equal(t, LevelCaution, c.Level, p)
		assert.Equal(t, "Can be deleted but may need rebuild", c.Reason, p)
	}
}

func TestClassify_CautionTableIsHomeScoped(t *testing.T) {
	v := newHomeValidator()

	// Inside the configured home the caution table applies; under another
	// user's home only the substring heuristics remain.
	assert.Equal(t, LevelCaution, v.Classify(testHome+"/.Trash/old").Level)
	assert.Equal(t, LevelSafe, v.Classify("/Users/other/.Trash/old").Level)
}

func TestClassify_SafePaths(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		testHome + "/Library/Caches/Google/Chrome/Default/Cache",
		testHome + "/Library/Caches/Firefox/Profiles/abc.default/cache2",
		testHome + "/Library/Caches/com.apple.Safari/fsCachedData",
		testHome + "/Library/Caches/com.brave.Browser/Cache",
		testHome + "/Library/Caches/Temporary Items/foo",
		"/tmp/temp_file",
		"/private/tmp/temp_file",
		"/var/tmp/build",
	}
	for _, p := range paths {
		c := v.Classify(p)
		assert.Equal(t, LevelSafe, c.Level, p)
		assert.Equal(t, "Safe to delete - auto-regenerates", c.Reason, p)
	}
}

func TestClassify_Heuristics(t *testing.T) {
	v := newHomeValidator()

	// DerivedData is not in any table; the substring heuristic catches it.
	assert.Equal(t, LevelWarning,
		v.Classify(testHome+"/Library/Developer/Xcode/DerivedData/MyApp-abcdef").Level)

	assert.Equal(t, LevelSafe, v.Classify("/opt/google/chrome/CacheStorage").Level)
	assert.Equal(t, LevelCaution, v.Classify("/srv/app/cache/assets").Level)
	assert.Equal(t, LevelCaution, v.Classify("/data/builds/output.log").Level)
	assert.Equal(t, LevelSafe, v.Classify("/mnt/backup/temp/archive").Level)
}

func TestClassify_UnknownDefaultsToCaution(t *testing.T) {
	v := newHomeValidator()

	// Unrecognized paths fall back to Caution, never Safe and never Danger.
	assert.Equal(t, LevelCaution, v.Classify("/some/random/path").Level)
	assert.Equal(t, LevelCaution, v.Classify(testHome+"/projects/readme.md").Level)
}

func TestClassify_TildeExpansion(t *testing.T) {
	v := newHomeValidator()

	c := v.Classify("~/Documents/taxes.pdf")
	assert.Equal(t, LevelDanger, c.Level)
	// The caller's spelling is preserved in the result.
	assert.Equal(t, "~/Documents/taxes.pdf", c.Path)

	assert.Equal(t, LevelSafe, v.Classify("~/Library/Caches/Google/Chrome/Default/Cache").Level)
}

func TestClassify_PopulatesCategory(t *testing.T) {
	v := newHomeValidator()

	assert.Equal(t, CategorySystemCritical, v.Classify("/System/Library/Fonts").Category)
	assert.Equal(t, CategoryBrowserCache,
		v.Classify(testHome+"/Library/Caches/Google/Chrome/Default/Cache").Category)
	assert.Equal(t, CategoryDeveloperCache,
		v.Classify(testHome+"/Library/Developer/Xcode/DerivedData/MyApp-abcdef").Category)
}

func TestClassify_Idempotent(t *testing.T) {
	v := newHomeValidator()

	first := v.Classify(testHome + "/Library/Caches/com.someapp")
	second := v.Classify(testHome + "/Library/Caches/com.someapp")
	assert.Equal(t, first, second)
}

func TestClassify_CustomRuleBeatsBuiltinTables(t *testing.T) {
	rule := levelRule("allow-system-staging", "/System/Volumes/Data/staging", LevelSafe)
	rule.Reason = "staging area approved for cleanup"
	v := newHomeValidator(rule)

	c := v.Classify("/System/Volumes/Data/staging/build.tmp")
	assert.Equal(t, LevelSafe, c.Level)
	assert.Equal(t, "allow-system-staging", c.RuleName)
	assert.Equal(t, "staging area approved for cleanup", c.Reason)

	// Paths the rule does not cover still hit the protected table.
	assert.Equal(t, LevelDanger, v.Classify("/System/Library/Fonts").Level)
}

func TestClassify_FirstMatchingRuleWins(t *testing.T) {
	v := newHomeValidator(
		levelRule("first", "/data/shared", LevelWarning),
		levelRule("second", "/data/shared", LevelSafe),
	)

	c := v.Classify("/data/shared/blob")
	assert.Equal(t, LevelWarning, c.Level)
	assert.Equal(t, "first", c.RuleName)
}

func TestClassify_RuleDefaultReason(t *testing.T) {
	v := newHomeValidator(levelRule("pin", "/data/pinned", LevelWarning))

	c := v.Classify("/data/pinned/file")
	assert.Equal(t, "matched custom rule", c.Reason)
}

func TestClassify_RulesSeeNormalizedPaths(t *testing.T) {
	v := newHomeValidator(levelRule("scratch", testHome+"/scratch", LevelSafe))

	// The rule matches through tilde expansion.
	c := v.Classify("~/scratch/tmpfile")
	assert.Equal(t, LevelSafe, c.Level)
	assert.Equal(t, "scratch", c.RuleName)
}

func TestAddRule_AppendsInOrder(t *testing.T) {
	v := newHomeValidator(levelRule("first", "/data/a", LevelWarning))
	v.AddRule(levelRule("second", "/data/b", LevelSafe))

	assert.Equal(t, "first", v.Classify("/data/a/x").RuleName)
	assert.Equal(t, "second", v.Classify("/data/b/x").RuleName)
}

func TestHome(t *testing.T) {
	v := NewValidator(WithHome("/Users/dev/"))
	assert.Equal(t, "/Users/dev", v.Home())
}

func TestIsProtected(t *testing.T) {
	v := newHomeValidator()

	assert.True(t, v.IsProtected("/System/Library"))
	assert.True(t, v.IsProtected("/usr/lib/dyld"))
	assert.True(t, v.IsProtected("~/Documents/taxes.pdf"))
	assert.True(t, v.IsProtected(testHome+"/Library/Keychains"))

	assert.False(t, v.IsProtected(testHome+"/Library/Caches/com.someapp"))
	assert.False(t, v.IsProtected("/tmp/temp_file"))
	assert.False(t, v.IsProtected("/some/random/path"))
}

func TestIsProtected_IgnoresCustomRules(t *testing.T) {
	v := newHomeValidator(levelRule("forbid", "/opt/custom", LevelDanger))

	// Classify honors the rule, but IsProtected answers only for the
	// built-in protected table.
	assert.Equal(t, LevelDanger, v.Classify("/opt/custom/data").Level)
	assert.False(t, v.IsProtected("/opt/custom/data"))
}

func TestValidateBatch(t *testing.T) {
	v := newHomeValidator()

	paths := []string{
		"/System/Library/Fonts",
		"/tmp/temp_file",
		testHome + "/Library/Caches/com.someapp",
	}
	results := v.ValidateBatch(paths)

	require.Len(t, results, 3)
	assert.Equal(t, paths[0], results[0].Path)
	assert.Equal(t, LevelDanger, results[0].Level)
	assert.Equal(t, paths[1], results[1].Path)
	assert.Equal(t, LevelSafe, results[1].Level)
	assert.Equal(t, paths[2], results[2].Path)
	assert.Equal(t, LevelCaution, results[2].Level)
}

func TestValidateBatch_Empty(t *testing.T) {
	v := newHomeValidator()
	assert.Len(t, v.ValidateBatch(nil), 0)
}

// newCleanupValidator pins the temp dir to Safe so classification does
// not depend on where the host puts temporary files, with specific
// rules layered in front.
func newCleanupValidator(tmp string, rules ...Rule) *Validator {
	rules = append(rules, levelRule("tmp-root", tmp, LevelSafe))
	return NewValidator(WithHome(tmp), WithRules(rules...))
}

func TestValidateCleanup_MissingPath(t *testing.T) {
	tmp := t.TempDir()
	v := newCleanupValidator(tmp)

	level, err := v.ValidateCleanup(filepath.Join(tmp, "does-not-exist"), LevelWarning)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Equal(t, Level(0), level)
}

func TestValidateCleanup_DangerAlwaysRefused(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "login.keychain")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	v := newCleanupValidator(tmp, levelRule("keychain", target, LevelDanger))

	// Even the most permissive ceiling never admits Danger.
	_, err := v.ValidateCleanup(target, LevelDanger)
	assert.ErrorIs(t, err, ErrProtectedPath)

	var ppe *ProtectedPathError
	require.ErrorAs(t, err, &ppe)
	assert.Equal(t, target, ppe.Path)
}

func TestValidateCleanup_LevelMismatch(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "DeviceSupport")
	require.NoError(t, os.Mkdir(target, 0o755))

	v := newCleanupValidator(tmp, levelRule("device-support", target, LevelWarning))

	_, err := v.ValidateCleanup(target, LevelCaution)
	assert.ErrorIs(t, err, ErrSafetyViolation)

	var lme *LevelMismatchError
	require.ErrorAs(t, err, &lme)
	assert.Equal(t, target, lme.Path)
	assert.Equal(t, LevelWarning, lme.Level)
	assert.Equal(t, LevelCaution, lme.Allowed)
}

func TestValidateCleanup_LevelWithinCeiling(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "cache.bin")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o644))

	v := newCleanupValidator(tmp)

	level, err := v.ValidateCleanup(target, LevelSafe)
	require.NoError(t, err)
	assert.Equal(t, LevelSafe, level)
}

func TestValidateCleanup_EqualLevelPasses(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "support")
	require.NoError(t, os.Mkdir(target, 0o755))

	v := newCleanupValidator(tmp, levelRule("support", target, LevelWarning))

	level, err := v.ValidateCleanup(target, LevelWarning)
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, level)
}

func TestValidateCleanup_ExpandsTilde(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "cache.bin"), []byte("data"), 0o644))

	v := newCleanupValidator(tmp)

	level, err := v.ValidateCleanup("~/cache.bin", LevelSafe)
	require.NoError(t, err)
	assert.Equal(t, LevelSafe, level)
}

func TestProtectedPathError(t *testing.T) {
	err := &ProtectedPathError{Path: "/System/Library", Reason: "Protected system or user path"}

	assert.Equal(t, "protected path: /System/Library - Protected system or user path", err.Error())
	assert.ErrorIs(t, err, ErrProtectedPath)
	assert.False(t, errors.Is(err, ErrSafetyViolation))
}

func TestLevelMismatchError(t *testing.T) {
	err := &LevelMismatchError{Path: "/x/DerivedData", Level: LevelWarning, Allowed: LevelCaution}

	assert.Equal(t,
		"safety level warning required for /x/DerivedData, but cleanup level only allows caution",
		err.Error())
	assert.ErrorIs(t, err, ErrSafetyViolation)
	assert.False(t, errors.Is(err, ErrProtectedPath))
}
