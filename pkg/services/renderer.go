package services

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mdblog/pkg/models"
)

// Template names used by the handlers.
const (
	IndexTemplate   = "index.html"
	ArticleTemplate = "blog_article.html"
)

// Renderer holds the template set compiled at startup. It is never
// modified afterwards.
type Renderer struct {
	templates *template.Template
	site      models.SiteConfig
}

// LoadTemplates names each template by its slash-separated path relative
// to root.
func LoadTemplates(root string, conv *MarkdownConverter, site models.SiteConfig) (*Renderer, error) {
	set := template.New("").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"markdown": conv.Filter,
		})

	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := set.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("%w: parse %s: %v", ErrTemplate, name, err)
		}
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load templates from %s: %w", root, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no templates found under %s", ErrTemplateNotFound, root)
	}

	return &Renderer{templates: set, site: site}, nil
}

func (r *Renderer) Has(name string) bool {
	return r.templates.Lookup(name) != nil
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	ctx := make(map[string]any, len(data)+1)
	ctx["site"] = r.site
	for key, value := range data {
		ctx[key] = value
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: execute %s: %v", ErrTemplate, name, err)
	}
	return buf.String(), nil
}
