package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed content/*.md
var contentFS embed.FS

// Page is a rendered narrative page
type Page struct {
	Slug  string        `json:"slug"`
	Title string        `json:"title"`
	HTML  template.HTML `json:"-"`
}

// Pages holds every content page, rendered once
type Pages struct {
	bySlug map[string]Page
	order  []string
}

var pageLayout = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · moodlens</title></head>
<body>
<nav>{{range .Nav}}<a href="/pages/{{.Slug}}">{{.Title}}</a> {{end}}</nav>
<main>{{.HTML}}</main>
</body>
</html>
`))

// LoadPages renders every *.md file in fsys; the slug is the file name
func LoadPages(fsys fs.FS) (*Pages, error) {
	files, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	p := &Pages{bySlug: make(map[string]Page, len(files))}
	for _, name := range files {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		slug := strings.TrimSuffix(path.Base(name), ".md")
		p.bySlug[slug] = Page{Slug: slug, Title: title(src, slug), HTML: template.HTML(renderMarkdown(src))}
		p.order = append(p.order, slug)
	}
	return p, nil
}

// DefaultPages renders the embedded content
func DefaultPages() (*Pages, error) {
	sub, err := fs.Sub(contentFS, "content")
	if err != nil {
		return nil, err
	}
	return LoadPages(sub)
}

func renderMarkdown(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(src, p, r)
}

// title is the first level-one heading, else the slug
func title(src []byte, slug string) string {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return slug
}

// List returns pages in slug order
func (p *Pages) List() []Page {
	out := make([]Page, 0, len(p.order))
	for _, s := range p.order {
		out = append(out, p.bySlug[s])
	}
	return out
}

// Get finds a page by slug
func (p *Pages) Get(slug string) (Page, bool) {
	page, ok := p.bySlug[slug]
	return page, ok
}

// Render wraps a page in the site layout
func (p *Pages) Render(page Page) ([]byte, error) {
	var buf bytes.Buffer
	err := pageLayout.Execute(&buf, struct {
		Page
		Nav []Page
	}{page, p.List()})
	return buf.Bytes(), err
}
