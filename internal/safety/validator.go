package safety

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule is a custom classification hook evaluated before the built-in
// tables. Evaluate returns the level to assign and true when the rule
// applies. Rules run in registration order; the first match wins and
// short-circuits everything else.
type Rule struct {
	Name     string
	Evaluate func(path string) (Level, bool)
	Reason   string
}

// Classification is the outcome of classifying one path. Path keeps the
// caller's original string; Reason is a human-readable justification
// for audit output, not control flow.
type Classification struct {
	Path     string
	Level    Level
	Category Category
	Reason   string
	RuleName string
}

// Validator is the single classification authority for cleanup
// decisions. The zero value is not usable; construct with NewValidator.
type Validator struct {
	home  string
	rules []Rule
	log   *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithHome anchors the home-relative rule tables to the given directory
// instead of the current user's home.
func WithHome(home string) Option {
	return func(v *Validator) { v.home = filepath.Clean(home) }
}

// WithLogger attaches a logger for classification tracing.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// WithRules registers custom rules at construction time, in order.
func WithRules(rules ...Rule) Option {
	return func(v *Validator) { v.rules = append(v.rules, rules...) }
}

// NewValidator builds a Validator over the built-in rule tables.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			v.home = home
		}
	}
	if v.log == nil {
		v.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v
}

// AddRule appends a custom rule. Registration order is significant.
func (v *Validator) AddRule(r Rule) {
	v.rules = append(v.rules, r)
}

// Home returns the home directory the tables are anchored to.
func (v *Validator) Home() string {
	return v.home
}

// Classify determines the safety level for a path. Precedence, first
// match wins: custom rules in registration order, protected table,
// warning table and glob patterns, caution table (home paths only),
// safe table, then substring heuristics with Caution as the final
// default for unrecognized paths.
func (v *Validator) Classify(path string) Classification {
	p := v.normalize(path)
	cat := Categorize(p, v.home)

	for i := range v.rules {
		level, ok := v.rules[i].Evaluate(p)
		if !ok {
			continue
		}
		reason := v.rules[i].Reason
		if reason == "" {
			reason = "matched custom rule"
		}
		v.log.Debug("classified by custom rule", "path", path, "rule", v.rules[i].Name, "level", level)
		return Classification{Path: path, Level: level, Category: cat, Reason: reason, RuleName: v.rules[i].Name}
	}

	var level Level
	switch {
	case v.isProtected(p):
		level = LevelDanger
	case v.isWarningPath(p):
		level = LevelWarning
	case v.isCautionPath(p):
		level = LevelCaution
	case v.isSafePath(p):
		level = LevelSafe
	default:
		level = heuristicLevel(p)
	}

	return Classification{Path: path, Level: level, Category: cat, Reason: reasonForLevel(level)}
}

// IsProtected reports whether the path falls under the protected table.
// It is a pure subset check so the executor can ask "is this definitely
// off-limits" without full rule evaluation; custom rules are not
// consulted.
func (v *Validator) IsProtected(path string) bool {
	return v.isProtected(v.normalize(path))
}

// ValidateBatch classifies each path, preserving input order.
func (v *Validator) ValidateBatch(paths []string) []Classification {
	results := make([]Classification, 0, len(paths))
	for _, p := range paths {
		results = append(results, v.Classify(p))
	}
	return results
}

// ValidateCleanup is the pre-flight gate every deletion passes through.
// It confirms the path exists, classifies it, and checks the result
// against maxAllowed. Danger paths fail regardless of maxAllowed.
func (v *Validator) ValidateCleanup(path string, maxAllowed Level) (Level, error) {
	p := v.normalize(path)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	c := v.Classify(path)
	if c.Level == LevelDanger {
		return 0, &ProtectedPathError{Path: path, Reason: c.Reason}
	}
	if c.Level > maxAllowed {
		return 0, &LevelMismatchError{Path: path, Level: c.Level, Allowed: maxAllowed}
	}
	return c.Level, nil
}

// normalize expands a leading ~ against home and cleans the result.
// Relative paths stay relative; symlinks are not resolved.
func (v *Validator) normalize(path string) string {
	if path == "~" {
		return v.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(v.home, path[2:])
	}
	return filepath.Clean(path)
}

func (v *Validator) isProtected(path string) bool {
	return v.inTable(path, protectedPaths)
}

func (v *Validator) isWarningPath(path string) bool {
	if v.inTable(path, warningPaths) {
		return true
	}
	return matchesWarningPattern(path)
}

// isCautionPath applies the caution table only below home. Safe-table
// entries are more specific subpaths of the caution roots and win.
func (v *Validator) isCautionPath(path string) bool {
	rel, ok := relativeToHome(path, v.home)
	if !ok {
		return false
	}
	if v.isSafePath(path) {
		return false
	}
	for _, entry := range cautionPaths {
		if strings.HasPrefix(rel, entry) {
			return true
		}
	}
	return false
}

// isSafePath keeps the looser prefix semantics the safe table has
// always had: absolute entries match on raw string prefix, relative
// entries match component-wise below home.
func (v *Validator) isSafePath(path string) bool {
	for _, entry := range safePaths {
		if strings.HasPrefix(entry, "/") {
			if strings.HasPrefix(path, entry) {
				return true
			}
			continue
		}
		if pathHasPrefix(path, filepath.Join(v.home, entry)) {
			return true
		}
	}
	return false
}

// inTable matches absolute entries component-wise against the path and
// relative entries as plain string prefixes of the home-relative
// remainder. The two semantics are deliberate and distinct from the
// glob patterns.
func (v *Validator) inTable(path string, table []string) bool {
	rel, underHome := relativeToHome(path, v.home)
	for _, entry := range table {
		if strings.HasPrefix(entry, "/") {
			if pathHasPrefix(path, entry) {
				return true
			}
			continue
		}
		if underHome && strings.HasPrefix(rel, entry) {
			return true
		}
	}
	return false
}

// matchesWarningPattern tries each glob against the path itself, its
// basename, and with a **/ prefix so directory-anchored patterns also
// hit absolute paths.
func matchesWarningPattern(path string) bool {
	base := filepath.Base(path)
	for _, pat := range warningPatterns {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, base); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match("**/"+pat, path); err == nil && ok {
			return true
		}
	}
	return false
}

// pathHasPrefix reports whether path equals prefix or lies below it,
// comparing whole path components.
func pathHasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// heuristicLevel is the fallback for paths no table matched: substring
// checks on the lowercased path. Unknown paths default to Caution,
// never Safe or Danger.
func heuristicLevel(path string) Level {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "/deriveddata"),
		strings.Contains(p, "/.gradle/"),
		strings.Contains(p, "/.npm/"),
		strings.Contains(p, "/.cargo/registry"),
		strings.Contains(p, "/.pub-cache"),
		strings.Contains(p, "/coresimulator/"),
		strings.Contains(p, "/ios devicesupport"):
		return LevelWarning
	case strings.Contains(p, "/chrome/"),
		strings.Contains(p, "/firefox/"),
		strings.Contains(p, "/safari/"),
		strings.Contains(p, "/brave/"):
		return LevelSafe
	case strings.Contains(p, "/caches/"),
		strings.Contains(p, "/cache/"):
		return LevelCaution
	case strings.Contains(p, "/logs/"),
		strings.HasSuffix(p, ".log"):
		return LevelCaution
	case strings.Contains(p, "/tmp/"),
		strings.Contains(p, "/temp/"),
		strings.Contains(p, "/.tmp"),
		strings.Contains(p, ".trash"):
		return LevelSafe
	}
	return LevelCaution
}

func reasonForLevel(l Level) string {
	switch l {
	case LevelDanger:
		return "Protected system or user path"
	case LevelWarning:
		return "Requires significant time to rebuild or re-download"
	case LevelCaution:
		return "Can be deleted but may need rebuild"
	default:
		return "Safe to delete - auto-regenerates"
	}
}
