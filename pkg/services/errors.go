package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for content and rendering operations.
var (
	ErrNotFound = errors.New("article not found")
	ErrParse    = errors.New("metadata parse failed")

	// ErrInvalidID wraps ErrNotFound so an id that could escape the content
	// root is treated as a missing article.
	ErrInvalidID = fmt.Errorf("invalid article id: %w", ErrNotFound)

	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplate         = errors.New("template error")
)
