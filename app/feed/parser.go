package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        strings.TrimSpace(cmp.Or(item.GUID, item.Link)),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Content:     item.Content,
	}

	normalized.Snippet = PlainText(cmp.Or(item.Content, item.Description))

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed
	}

	if item.Categories != nil {
		normalized.Categories = item.Categories
	}

	// RSS 2.0 allows only one enclosure per item
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosure := item.Enclosures[0]
		normalized.EnclosureURL = strings.TrimSpace(enclosure.URL)
		normalized.EnclosureType = enclosure.Type

		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				normalized.EnclosureLength = length
			}
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		normalized.ImageURL = item.Image.URL
	} else {
		normalized.ImageURL = cmp.Or(FirstImage(item.Content), FirstImage(item.Description))
	}

	return normalized
}

// Image picks the record image: an image enclosure, then the item image, then fallback.
func (i Item) Image(fallback string) string {
	if i.EnclosureURL != "" && (i.EnclosureType == "" || strings.HasPrefix(i.EnclosureType, "image/")) {
		return i.EnclosureURL
	}
	return cmp.Or(i.ImageURL, fallback)
}
