package storage

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// TimestampFormat is the UTC suffix appended to a base name on collision
const TimestampFormat = "20060102T150405.000000000Z"

// MaxFileNameBytes is the file name limit of common filesystems
const MaxFileNameBytes = 255

// maxExtBytes bounds an extension so a degenerate one cannot crowd out the stem
const maxExtBytes = 64

var (
	lineBreaks     = regexp.MustCompile(`[\t\n\v\f\r]`)
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Manager owns the flat storage folder assets are written into
type Manager struct {
	fs   afero.Fs
	root string
	now  func() time.Time
}

// NewManager creates a manager for root on fs. The folder itself is created
// lazily by the first Create.
func NewManager(fs afero.Fs, root string) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{
		fs:   fs,
		root: root,
		now:  time.Now,
	}
}

// SetClock replaces the clock used for collision suffixes
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Root returns the storage folder
func (m *Manager) Root() string {
	return m.root
}

// SanitizeFileName replaces characters that are not allowed in file names,
// collapses whitespace (line breaks and tabs included) and drops trailing
// dots and spaces. A name with nothing left becomes "_".
func SanitizeFileName(name string) string {
	name = lineBreaks.ReplaceAllString(name, " ")
	name = invalidChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ")
	if name == "" {
		return "_"
	}
	return name
}

// BuildTargetPath returns root/base.ext, or root/base-<utc timestamp>.ext if
// a file already exists there. Names longer than MaxFileNameBytes lose the
// end of the base name, never the suffix or extension. It does not create
// anything, so repeated calls return the same path until the file appears.
func (m *Manager) BuildTargetPath(baseName, ext string) (string, error) {
	target := filepath.Join(m.root, fileName(baseName, "", ext))

	exists, err := afero.Exists(m.fs, target)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", target, err)
	}
	if !exists {
		return target, nil
	}

	stamp := "-" + m.now().UTC().Format(TimestampFormat)
	return filepath.Join(m.root, fileName(baseName, stamp, ext)), nil
}

// Create opens path for writing, creating the storage folder first if needed
func (m *Manager) Create(path string) (afero.File, error) {
	if err := m.fs.MkdirAll(m.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage folder: %w", err)
	}

	file, err := m.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}

// ExtensionFromURL returns the extension of the last path segment of rawURL,
// without the dot. When there is none, the whole URL is returned with ok
// false; callers decide whether to accept that degenerate extension.
func ExtensionFromURL(rawURL string) (ext string, ok bool) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	ext = strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" {
		return rawURL, false
	}
	return ext, true
}

// fileName sanitizes stem and ext and cuts the stem on a rune boundary so
// stem+suffix+"."+ext fits in MaxFileNameBytes
func fileName(stem, suffix, ext string) string {
	tail := suffix
	if ext != "" {
		tail += "." + truncateUTF8(SanitizeFileName(ext), maxExtBytes)
	}

	stem = truncateUTF8(SanitizeFileName(stem), MaxFileNameBytes-len(tail))
	stem = strings.TrimRight(stem, " .")
	if stem == "" {
		stem = "_"
	}
	return stem + tail
}

func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
