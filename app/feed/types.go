package feed

import (
	"time"
)

// Feed processing types
type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	Snippet     string     // Plain text of Content, falling back to Description
	ImageURL    string     // Item image or first <img> found in the item HTML
	PublishedAt *time.Time // nil when the feed carries no parseable date
	Categories  []string

	IsFiltered   bool
	FilterReason string

	EnclosureURL    string
	EnclosureLength int64
	EnclosureType   string
}

// Configuration types
type Config struct {
	URL      string         `yaml:"url"`
	Source   string         `yaml:"source"` // Literal tag stored on every news record
	Settings ConfigSettings `yaml:"settings"`
	Rules    Rules          `yaml:"rules"`
}

type ConfigSettings struct {
	Timeout        int    `yaml:"timeout"`         // seconds
	MaxDescription int    `yaml:"max_description"` // runes
	DefaultImage   string `yaml:"default_image"`
	ExtractContent bool   `yaml:"extract_content"` // fetch the article page for excerpt/image
}

type Rules struct {
	FoldAccents bool           `yaml:"fold_accents"`
	RequireAny  []KeywordGroup `yaml:"require_any"`
	Blacklist   []string       `yaml:"blacklist"`
}

type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}
