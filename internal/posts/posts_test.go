package posts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeviriyi/site/internal/log"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()

	writePost(t, dir, "hello-world.md", `---
title: Hello World
date: "2024-01-15"
tags:
  - go
  - web
summary: The first post.
---

# Hello

This is **bold**.
`)
	writePost(t, dir, "second-post.mdx", `---
title: Second Post
date: "2024-06-01"
tags:
  - go
---

Body of the second post.
`)
	writePost(t, dir, "notes.txt", "not a post")

	r, err := NewRegistry(dir, log.NewNop())
	require.NoError(t, err)
	return r
}

func TestRegistrySlugsAndTags(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, []string{"hello-world", "second-post"}, r.Slugs())
	assert.Equal(t, []string{"go", "web"}, r.Tags())
}

func TestRegistryMetadata(t *testing.T) {
	r := testRegistry(t)

	meta, err := r.Metadata("hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", meta.Title)
	assert.Equal(t, "2024-01-15", meta.Date)
	assert.Equal(t, "The first post.", meta.Summary)

	_, err = r.Metadata("missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRegistryHTML(t *testing.T) {
	r := testRegistry(t)

	html, err := r.HTML("hello-world")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRegistryByDate(t *testing.T) {
	r := testRegistry(t)

	all := r.ByDate(0, 0)
	require.Len(t, all, 2)
	assert.Equal(t, "second-post", all[0].Slug)
	assert.Equal(t, "hello-world", all[1].Slug)

	// 1-based inclusive range.
	first := r.ByDate(1, 1)
	require.Len(t, first, 1)
	assert.Equal(t, "second-post", first[0].Slug)

	assert.Empty(t, r.ByDate(5, 9))
}

func TestRegistryByTag(t *testing.T) {
	r := testRegistry(t)

	goPosts := r.ByTag("go")
	require.Len(t, goPosts, 2)
	assert.Equal(t, "second-post", goPosts[0].Slug)

	webPosts := r.ByTag("web")
	require.Len(t, webPosts, 1)
	assert.Equal(t, "hello-world", webPosts[0].Slug)

	assert.Empty(t, r.ByTag("rust"))
}

func TestRegistryMissingDirectory(t *testing.T) {
	r, err := NewRegistry(filepath.Join(t.TempDir(), "absent"), log.NewNop())
	require.NoError(t, err)
	assert.Empty(t, r.Slugs())
}

func TestRegistryReload(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(dir, log.NewNop())
	require.NoError(t, err)
	assert.Empty(t, r.Slugs())

	writePost(t, dir, "late.md", `---
title: Late
date: "2024-03-03"
---

arrived after startup
`)
	require.NoError(t, r.Reload())
	assert.Equal(t, []string{"late"}, r.Slugs())
}

func TestSplitFrontmatterWithoutBlock(t *testing.T) {
	meta, body, err := splitFrontmatter([]byte("just a body"))
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Equal(t, "just a body", string(body))
}

func TestSplitFrontmatterUnterminated(t *testing.T) {
	_, _, err := splitFrontmatter([]byte("---\ntitle: broken\n"))
	assert.Error(t, err)
}
