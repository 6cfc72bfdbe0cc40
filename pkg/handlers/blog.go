package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mdblog/pkg/services"
)

// Literal bodies returned when a page cannot be produced.
const (
	NotFoundBody        = "<p>Could not find post, sorry!</p>"
	TemplateFailureBody = "<p>I'm struggling with the templates 💩</p>"
	ServerErrorBody     = "<p>Something went wrong, sorry!</p>"
	PageNotFoundBody    = "<p>Page not found</p>"
)

const htmlContentType = "text/html; charset=utf-8"

type Blog struct {
	Repo       *services.Repository
	Renderer   *services.Renderer
	Markdown   *services.MarkdownConverter
	ShowHidden bool
	Log        *zap.SugaredLogger
}

func NewBlog(repo *services.Repository, renderer *services.Renderer, conv *services.MarkdownConverter, showHidden bool, log *zap.SugaredLogger) *Blog {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Blog{
		Repo:       repo,
		Renderer:   renderer,
		Markdown:   conv,
		ShowHidden: showHidden,
		Log:        log,
	}
}

func (b *Blog) Index(c *gin.Context) {
	articles, err := b.Repo.ListArticles(c.Request.Context(), services.ListOptions{IncludeHidden: b.ShowHidden})
	if err != nil {
		b.Log.Errorw("list articles failed", "error", err)
		c.Data(http.StatusInternalServerError, htmlContentType, []byte(ServerErrorBody))
		return
	}

	page, err := b.Renderer.Render(services.IndexTemplate, gin.H{
		"article_data_list": articles,
	})
	if err != nil {
		b.Log.Errorw("render index failed", "error", err)
		c.Data(http.StatusInternalServerError, htmlContentType, []byte(ServerErrorBody))
		return
	}

	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

// Article answers 404 for both missing content and template failures.
func (b *Blog) Article(c *gin.Context) {
	id := c.Param("article_name")

	article, err := b.Repo.FetchArticle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrParse) {
			b.Log.Warnw("article has invalid metadata", "id", id, "error", err)
		} else {
			b.Log.Debugw("article not found", "id", id, "error", err)
		}
		c.Data(http.StatusNotFound, htmlContentType, []byte(NotFoundBody))
		return
	}

	page, err := b.Renderer.Render(services.ArticleTemplate, gin.H{
		"markdown_content": article.Body,
		"content_html":     b.Markdown.Filter(article.Body),
		"article_data":     article.Metadata,
	})
	if err != nil {
		b.Log.Errorw("render article failed", "id", id, "error", err)
		c.Data(http.StatusNotFound, htmlContentType, []byte(TemplateFailureBody))
		return
	}

	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

func NotFound(c *gin.Context) {
	c.Data(http.StatusNotFound, htmlContentType, []byte(PageNotFoundBody))
}
