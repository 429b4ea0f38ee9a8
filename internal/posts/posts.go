// Package posts serves the site's blog: markdown files with YAML
// frontmatter, loaded into an in-memory registry and rendered with
// goldmark.
//
// The registry is built at startup and refreshed explicitly via Reload;
// posts only change on deploy, so there is no TTL machinery.
package posts

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// ErrPostNotFound is returned when a slug does not exist.
var ErrPostNotFound = errors.New("post not found")

// Metadata is a post's frontmatter.
type Metadata struct {
	Title   string   `yaml:"title" json:"title"`
	Date    string   `yaml:"date" json:"date"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Summary string   `yaml:"summary,omitempty" json:"summary,omitempty"`
}

// Post pairs a slug with its metadata.
type Post struct {
	Slug     string   `json:"slug"`
	Metadata Metadata `json:"metadata"`
}

type entry struct {
	metadata Metadata
	html     string
	date     time.Time
}

// Registry holds all loaded posts.
//
// Safe for concurrent use; Reload swaps the post map atomically under lock.
type Registry struct {
	dir    string
	md     goldmark.Markdown
	logger *slog.Logger

	mu    sync.RWMutex
	posts map[string]entry
}

// NewRegistry creates a registry over the given directory and loads it.
// A missing directory is not an error; the registry is simply empty.
func NewRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		logger: logger,
		posts:  map[string]entry{},
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the posts directory. Files that fail to parse are skipped
// with a warning so one broken post does not take the blog down.
func (r *Registry) Reload() error {
	files, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		r.mu.Lock()
		r.posts = map[string]entry{}
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading posts directory %s: %w", r.dir, err)
	}

	posts := make(map[string]entry)
	for _, f := range files {
		name := f.Name()
		ext := filepath.Ext(name)
		if f.IsDir() || (ext != ".md" && ext != ".mdx") {
			continue
		}
		slug := strings.TrimSuffix(name, ext)

		raw, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			r.logger.Warn("failed to read post", "slug", slug, "error", err)
			continue
		}

		meta, body, err := splitFrontmatter(raw)
		if err != nil {
			r.logger.Warn("failed to parse post frontmatter", "slug", slug, "error", err)
			continue
		}

		var buf bytes.Buffer
		if err := r.md.Convert(body, &buf); err != nil {
			r.logger.Warn("failed to render post", "slug", slug, "error", err)
			continue
		}

		posts[slug] = entry{
			metadata: meta,
			html:     buf.String(),
			date:     parseDate(meta.Date),
		}
	}

	r.mu.Lock()
	r.posts = posts
	r.mu.Unlock()

	r.logger.Info("posts loaded", "count", len(posts), "dir", r.dir)
	return nil
}

// splitFrontmatter separates the leading YAML block from the markdown body.
// A post without frontmatter is all body with zero metadata.
func splitFrontmatter(raw []byte) (Metadata, []byte, error) {
	var meta Metadata

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return meta, []byte(content), nil
	}

	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return meta, nil, errors.New("unterminated frontmatter block")
	}

	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return meta, nil, fmt.Errorf("decoding frontmatter: %w", err)
	}

	body := rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return meta, []byte(body), nil
}

// parseDate accepts the date formats posts actually use.
func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Slugs returns every post slug.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.posts))
	for slug := range r.posts {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Tags returns the distinct tags across all posts, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range r.posts {
		for _, tag := range e.metadata.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Metadata returns a post's frontmatter.
func (r *Registry) Metadata(slug string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.posts[slug]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	return e.metadata, nil
}

// HTML returns a post's rendered body.
func (r *Registry) HTML(slug string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.posts[slug]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	return e.html, nil
}

// ByDate returns posts newest first. start and end select a 1-based
// inclusive range for pagination; zero values mean unbounded.
func (r *Registry) ByDate(start, end int) []Post {
	sorted := r.sortedByDate()

	if start == 0 && end == 0 {
		return sorted
	}

	startIdx := 0
	if start > 0 {
		startIdx = start - 1
	}
	endIdx := len(sorted)
	if end > 0 && end < endIdx {
		endIdx = end
	}
	if startIdx >= len(sorted) || startIdx >= endIdx {
		return []Post{}
	}
	return sorted[startIdx:endIdx]
}

// ByTag returns posts carrying the tag, newest first.
func (r *Registry) ByTag(tag string) []Post {
	sorted := r.sortedByDate()

	filtered := make([]Post, 0, len(sorted))
	for _, p := range sorted {
		for _, t := range p.Metadata.Tags {
			if t == tag {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

func (r *Registry) sortedByDate() []Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type dated struct {
		post Post
		date time.Time
	}
	all := make([]dated, 0, len(r.posts))
	for slug, e := range r.posts {
		all = append(all, dated{
			post: Post{Slug: slug, Metadata: e.metadata},
			date: e.date,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].date.Equal(all[j].date) {
			return all[i].post.Slug < all[j].post.Slug
		}
		return all[i].date.After(all[j].date)
	})

	posts := make([]Post, len(all))
	for i, d := range all {
		posts[i] = d.post
	}
	return posts
}
