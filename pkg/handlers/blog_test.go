package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"mdblog/pkg/models"
	"mdblog/pkg/services"
)

const (
	indexTemplate = `<html><head><title>{{ .site.Title }}</title></head><body>
<ul>{{ range .article_data_list }}<li><a href="/blog/{{ .FileName }}">{{ .Title }}</a></li>{{ end }}</ul>
</body></html>`

	articleTemplate = `<html><head><title>{{ .article_data.Title }}</title></head><body>
<h2 class="title">{{ .article_data.Title }}</h2>
<article>{{ .content_html }}</article>
</body></html>`
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	content   string
	templates string
	static    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{
		content:   filepath.Join(base, "blog"),
		templates: filepath.Join(base, "templates"),
		static:    filepath.Join(base, "static"),
	}
	writeFile(t, filepath.Join(f.templates, services.IndexTemplate), indexTemplate)
	writeFile(t, filepath.Join(f.templates, services.ArticleTemplate), articleTemplate)
	writeFile(t, filepath.Join(f.static, "style.css"), "body{}")
	if err := os.MkdirAll(f.content, 0o755); err != nil {
		t.Fatalf("mkdir content: %v", err)
	}
	return f
}

func (f fixture) article(t *testing.T, id, meta, body string) {
	t.Helper()
	writeFile(t, filepath.Join(f.content, id, services.MetadataFile), meta)
	writeFile(t, filepath.Join(f.content, id, services.PostFile), body)
}

func (f fixture) router(t *testing.T) *gin.Engine {
	t.Helper()
	conv := services.NewMarkdownConverter()
	renderer, err := services.LoadTemplates(f.templates, conv, models.SiteConfig{Title: "Test Blog"})
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	blog := NewBlog(services.NewRepository(f.content, nil), renderer, conv, false, nil)
	return NewRouter(blog, f.static)
}

func writeFile(tb testing.TB, path, content string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestArticle(t *testing.T) {
	f := newFixture(t)
	f.article(t, "hello", `{"title":"Hi","file_name":"hello","posted":"2024-01-01","hidden":false}`, "# Hi")

	rec := get(t, f.router(t), "/blog/hello")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Hi</h1>") {
		t.Fatalf("body missing rendered heading: %s", body)
	}

	doc := parse(t, body)
	if got := doc.Find("h2.title").Text(); got != "Hi" {
		t.Fatalf("title = %q, want Hi", got)
	}
}

func TestArticleMissing(t *testing.T) {
	f := newFixture(t)
	r := f.router(t)

	for _, target := range []string{"/blog/missing", "/blog/.."} {
		rec := get(t, r, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", target, rec.Code)
		}
		if rec.Body.String() != NotFoundBody {
			t.Fatalf("%s: body = %q, want %q", target, rec.Body.String(), NotFoundBody)
		}
	}
}

func TestArticleIncomplete(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.content, "nobody", services.MetadataFile),
		`{"title":"No body","file_name":"nobody","posted":"x","hidden":false}`)
	writeFile(t, filepath.Join(f.content, "nometa", services.PostFile), "# orphan")
	f.article(t, "broken", `{"file_name":"broken","posted":"x","hidden":false}`, "# broken")

	r := f.router(t)
	for _, id := range []string{"nobody", "nometa", "broken"} {
		rec := get(t, r, "/blog/"+id)
		if rec.Code != http.StatusNotFound || rec.Body.String() != NotFoundBody {
			t.Fatalf("%s: got %d %q, want 404 %q", id, rec.Code, rec.Body.String(), NotFoundBody)
		}
	}
}

func TestArticlePathTraversal(t *testing.T) {
	f := newFixture(t)
	// A post.md sitting just outside the content root.
	writeFile(t, filepath.Join(filepath.Dir(f.content), "outside", services.PostFile), "TOP SECRET")
	writeFile(t, filepath.Join(filepath.Dir(f.content), "outside", services.MetadataFile),
		`{"title":"TOP SECRET","file_name":"outside","posted":"x","hidden":false}`)

	r := f.router(t)
	targets := []string{
		"/blog/../../etc/passwd",
		"/blog/..%2F..%2Fetc%2Fpasswd",
		"/blog/..%2Foutside",
		"/blog/../outside",
	}
	for _, target := range targets {
		rec := get(t, r, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", target, rec.Code)
		}
		body := rec.Body.String()
		if strings.Contains(body, "TOP SECRET") || strings.Contains(body, "root:") {
			t.Fatalf("%s: leaked file contents: %s", target, body)
		}
	}
}

func TestArticleTemplateFailure(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.templates, services.ArticleTemplate), `{{ .not_supplied }}`)
	f.article(t, "hello", `{"title":"Hi","file_name":"hello","posted":"2024-01-01","hidden":false}`, "# Hi")

	rec := get(t, f.router(t), "/blog/hello")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != TemplateFailureBody {
		t.Fatalf("body = %q, want %q", rec.Body.String(), TemplateFailureBody)
	}
}

func TestIndex(t *testing.T) {
	f := newFixture(t)
	f.article(t, "one", `{"title":"One","file_name":"one","posted":"2024-01-01","hidden":false}`, "1")
	f.article(t, "two", `{"title":"Two","file_name":"two","posted":"2024-01-02","hidden":false}`, "2")
	f.article(t, "bad", `{"file_name":"bad","posted":"2024-01-03","hidden":false}`, "3")
	f.article(t, "hidden", `{"title":"Hidden","file_name":"hidden","posted":"2024-01-04","hidden":true}`, "4")

	rec := get(t, f.router(t), "/?page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	doc := parse(t, rec.Body.String())
	if got := doc.Find("title").Text(); got != "Test Blog" {
		t.Fatalf("title = %q, want Test Blog", got)
	}

	links := map[string]string{}
	doc.Find("li a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links[s.Text()] = href
	})
	if len(links) != 2 {
		t.Fatalf("expected exactly two listed articles, got %v", links)
	}
	if links["One"] != "/blog/one" || links["Two"] != "/blog/two" {
		t.Fatalf("unexpected links %v", links)
	}
}

func TestIndexShowHidden(t *testing.T) {
	f := newFixture(t)
	f.article(t, "hidden", `{"title":"Hidden","file_name":"hidden","posted":"x","hidden":true}`, "h")

	conv := services.NewMarkdownConverter()
	renderer, err := services.LoadTemplates(f.templates, conv, models.DefaultSiteConfig())
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	r := NewRouter(NewBlog(services.NewRepository(f.content, nil), renderer, conv, true, nil), f.static)

	doc := parse(t, get(t, r, "/").Body.String())
	if got := doc.Find("li a").Text(); got != "Hidden" {
		t.Fatalf("expected hidden article to be listed, got %q", got)
	}
}

func TestIndexFailures(t *testing.T) {
	t.Run("missing content root", func(t *testing.T) {
		f := newFixture(t)
		if err := os.RemoveAll(f.content); err != nil {
			t.Fatalf("remove content: %v", err)
		}
		rec := get(t, f.router(t), "/")
		if rec.Code != http.StatusInternalServerError || rec.Body.String() != ServerErrorBody {
			t.Fatalf("got %d %q, want 500 %q", rec.Code, rec.Body.String(), ServerErrorBody)
		}
	})

	t.Run("template failure", func(t *testing.T) {
		f := newFixture(t)
		writeFile(t, filepath.Join(f.templates, services.IndexTemplate), `{{ .not_supplied }}`)
		rec := get(t, f.router(t), "/")
		if rec.Code != http.StatusInternalServerError || rec.Body.String() != ServerErrorBody {
			t.Fatalf("got %d %q, want 500 %q", rec.Code, rec.Body.String(), ServerErrorBody)
		}
	})
}

func TestStaticAndNoRoute(t *testing.T) {
	f := newFixture(t)
	r := f.router(t)

	rec := get(t, r, "/static/style.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("static: got %d %q", rec.Code, rec.Body.String())
	}

	rec = get(t, r, "/nowhere")
	if rec.Code != http.StatusNotFound || rec.Body.String() != PageNotFoundBody {
		t.Fatalf("no route: got %d %q", rec.Code, rec.Body.String())
	}
}

func TestShippedSite(t *testing.T) {
	root := filepath.Join("..", "..")
	conv := services.NewMarkdownConverter()
	site, err := services.LoadSiteConfig(filepath.Join(root, "site.yml"))
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	renderer, err := services.LoadTemplates(filepath.Join(root, "templates"), conv, site)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	repo := services.NewRepository(filepath.Join(root, "blog"), nil)
	r := NewRouter(NewBlog(repo, renderer, conv, false, nil), filepath.Join(root, "static"))

	rec := get(t, r, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d; body=%s", rec.Code, rec.Body.String())
	}
	doc := parse(t, rec.Body.String())
	if got := doc.Find("ul.articles li a").Length(); got != 2 {
		t.Fatalf("expected two sample articles, got %d", got)
	}
	if got := doc.Find("title").Text(); got != site.Title {
		t.Fatalf("index title = %q, want %q", got, site.Title)
	}

	rec = get(t, r, "/blog/markdown-tour")
	if rec.Code != http.StatusOK {
		t.Fatalf("article status = %d; body=%s", rec.Code, rec.Body.String())
	}
	doc = parse(t, rec.Body.String())
	if doc.Find("article table").Length() != 1 {
		t.Fatalf("expected rendered table in article")
	}
	if doc.Find("article pre.chroma").Length() != 1 {
		t.Fatalf("expected highlighted code block in article")
	}
}
