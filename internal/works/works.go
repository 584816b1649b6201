// Package works loads the portfolio catalog: one markdown file per work,
// with YAML front matter between "---" fences.
package works

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"folio/internal/httputil"
	"folio/internal/media"
)

// ErrNotFound is returned by Get when no file exists for a slug.
var ErrNotFound = errors.New("work not found")

const ext = ".md"

// Catalog reads works from a directory. It holds no state besides the
// directory, so every call sees the files as they are on disk.
type Catalog struct {
	dir    string
	logger *slog.Logger
}

// New returns a Catalog rooted at dir.
func New(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{dir: dir, logger: logger}
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string { return c.dir }

// Slugs returns the basename of every markdown file in the directory.
// A missing directory yields no slugs.
func (c *Catalog) Slugs() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading works dir: %w", err)
	}

	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ext))
	}
	return slugs, nil
}

// Get loads a single work by slug.
func (c *Catalog) Get(slug string) (*media.Work, error) {
	if err := httputil.ValidateSlug(slug); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(c.dir, slug+ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading work %s: %w", slug, err)
	}

	w, err := parse(slug, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing work %s: %w", slug, err)
	}
	return w, nil
}

// All loads every work, newest first. Files that fail to load are skipped.
func (c *Catalog) All() ([]media.Work, error) {
	slugs, err := c.Slugs()
	if err != nil {
		return nil, err
	}

	list := make([]media.Work, 0, len(slugs))
	for _, slug := range slugs {
		w, err := c.Get(slug)
		if err != nil {
			c.logger.Debug("skipping work", "slug", slug, "error", err)
			continue
		}
		list = append(list, *w)
	}

	Sort(list)
	return list, nil
}

// Sort orders works by year desc, then month desc (unset months last
// within a year), then slug.
func Sort(list []media.Work) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.Slug < b.Slug
	})
}

// frontMatter mirrors the YAML keys of a work file.
type frontMatter struct {
	Slug         string   `yaml:"slug"`
	Title        string   `yaml:"title"`
	Year         int      `yaml:"year"`
	Month        month    `yaml:"month"`
	Tags         []string `yaml:"tags"`
	Summary      string   `yaml:"summary"`
	ThumbnailURL string   `yaml:"thumbnailUrl"`
}

// month accepts either a YAML integer or a numeric string.
// Anything else leaves it unset.
type month int

func (m *month) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		*m = month(n)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*m = month(n)
	}
	return nil
}

func parse(slug string, raw []byte) (*media.Work, error) {
	header, body := splitFrontMatter(raw)

	var fm frontMatter
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
	}

	w := &media.Work{
		Slug:         fm.Slug,
		Title:        fm.Title,
		Year:         fm.Year,
		Month:        int(fm.Month),
		Tags:         fm.Tags,
		Summary:      fm.Summary,
		ThumbnailURL: fm.ThumbnailURL,
		Content:      string(body),
	}
	if w.Slug == "" {
		w.Slug = slug
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return w, nil
}

// splitFrontMatter separates a leading "---" fenced block from the body.
// Without an opening fence, or without a closing one, the whole input is body.
func splitFrontMatter(raw []byte) (header, body []byte) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	first, rest, ok := cutLine(raw)
	if !ok || string(bytes.TrimSpace(first)) != "---" {
		return nil, raw
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		if string(bytes.TrimSpace(line)) == "---" {
			return rest[:offset], bytes.TrimLeft(next, "\r\n")
		}
		if !more {
			return nil, raw
		}
		offset = len(rest) - len(next)
	}
}

// cutLine splits b after its first newline. ok is false when b has no
// newline, in which case line is all of b.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}
