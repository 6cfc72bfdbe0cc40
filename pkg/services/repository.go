package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mdblog/pkg/models"
)

const (
	// PostFile is the markdown body inside an article directory.
	PostFile = "post.md"
	// MetadataFile is the metadata record inside an article directory.
	MetadataFile = "data.json"

	metadataExt = ".json"
)

// ListOptions controls which articles ListArticles returns.
type ListOptions struct {
	// IncludeHidden keeps articles whose metadata sets hidden=true.
	IncludeHidden bool
}

// Repository reads the content tree on every call; nothing is cached.
type Repository struct {
	root string
	log  *zap.SugaredLogger
}

func NewRepository(root string, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Repository{root: filepath.Clean(root), log: log}
}

func (r *Repository) Root() string {
	return r.root
}

// FetchArticle fails unless both files load. A malformed record matches
// both ErrNotFound and ErrParse.
func (r *Repository) FetchArticle(ctx context.Context, id string) (models.Article, error) {
	if err := ctx.Err(); err != nil {
		return models.Article{}, err
	}

	dir, err := SafeJoin(r.root, id)
	if err != nil {
		return models.Article{}, err
	}

	postPath := filepath.Join(dir, PostFile)
	metaPath := filepath.Join(dir, MetadataFile)

	body, err := os.ReadFile(postPath)
	if err != nil {
		return models.Article{}, fmt.Errorf("%w: read %s: %v", ErrNotFound, postPath, err)
	}
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return models.Article{}, fmt.Errorf("%w: read %s: %v", ErrNotFound, metaPath, err)
	}

	meta, err := ParseMetadata(raw)
	if err != nil {
		return models.Article{}, fmt.Errorf("%w: %s: %w", ErrNotFound, metaPath, err)
	}

	return models.Article{Metadata: meta, Body: string(body)}, nil
}

// ListArticles returns article metadata in walk order. A metadata file that
// is unreadable, fails to parse or has no post.md beside it is logged and
// skipped; any other I/O error aborts the listing.
func (r *Repository) ListArticles(ctx context.Context, opts ListOptions) ([]models.ArticleMetadata, error) {
	articles := []models.ArticleMetadata{}

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != r.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMetadataFile(d) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			r.log.Warnw("skipping unreadable article", "path", path, "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		meta, err := ParseMetadata(raw)
		if err != nil {
			r.log.Warnw("skipping article with invalid metadata", "path", path, "error", err)
			return nil
		}

		if _, err := os.Stat(filepath.Join(filepath.Dir(path), PostFile)); err != nil {
			r.log.Warnw("skipping article without body", "path", path, "error", err)
			return nil
		}

		if meta.Hidden && !opts.IncludeHidden {
			r.log.Debugw("skipping hidden article", "path", path)
			return nil
		}

		articles = append(articles, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list articles under %s: %w", r.root, err)
	}

	return articles, nil
}

func isMetadataFile(d fs.DirEntry) bool {
	if !d.Type().IsRegular() {
		return false
	}
	return strings.EqualFold(filepath.Ext(d.Name()), metadataExt)
}
