package models

// SiteConfig describes the site as a whole. It is exposed to every template
// under the "site" key.
type SiteConfig struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Author      string `yaml:"author" toml:"author"`
	BaseURL     string `yaml:"base_url" toml:"base_url"`
}

// DefaultSiteConfig is used when no site file is present.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Title: "Blog",
	}
}
