package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mdblog/pkg/models"
)

// LoadSiteConfig returns the defaults when the file is missing.
func LoadSiteConfig(path string) (models.SiteConfig, error) {
	cfg := models.DefaultSiteConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read site config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(content, &cfg)
	case ".toml":
		err = toml.Unmarshal(content, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported site config format: %s", path)
	}
	if err != nil {
		return models.DefaultSiteConfig(), fmt.Errorf("parse site config %s: %w", path, err)
	}
	return cfg, nil
}
