package tasks

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pedrinsang/classboard/app/calendar"
	"github.com/pedrinsang/classboard/app/events"
	"github.com/pedrinsang/classboard/app/feed"
	"github.com/pedrinsang/classboard/app/store"
)

const maxResponseSize = 10 << 20

type ScrapeNewsTask struct {
	Task
	FeedConfig       *feed.Config
	httpClient       *http.Client
	parser           *feed.Parser
	filterer         *feed.Filterer
	contentExtractor *feed.ContentExtractor
	sink             NewsSink
	cache            SeenCache
	publisher        Publisher
	location         *time.Location
	userAgent        string
	now              func() time.Time
}

func NewScrapeNewsTask(feedConfig *feed.Config, httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer,
	contentExtractor *feed.ContentExtractor, sink NewsSink, cache SeenCache, publisher Publisher,
	location *time.Location, userAgent string) *ScrapeNewsTask {
	return &ScrapeNewsTask{
		Task:             NewTask(TaskTypeScrapeNews),
		FeedConfig:       feedConfig,
		httpClient:       httpClient,
		parser:           parser,
		filterer:         filterer,
		contentExtractor: contentExtractor,
		sink:             sink,
		cache:            cache,
		publisher:        publisher,
		location:         location,
		userAgent:        userAgent,
		now:              time.Now,
	}
}

func (t *ScrapeNewsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetch(ctx, t.FeedConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	_, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	runDate := calendar.Today(t.now(), t.location)
	batch := t.sink.NewBatch()
	staged := make(map[string]struct{})
	stagedIDs := make([]string, 0)

	filteredCount := 0
	duplicateCount := 0

	for _, item := range t.filterer.Run(items, &t.FeedConfig.Rules) {
		if item.IsFiltered {
			filteredCount++
			slog.Debug("Item filtered", "title", item.Title, "reason", item.FilterReason)
			continue
		}

		id, err := feed.LinkID(item.Link)
		if err != nil {
			return fmt.Errorf("item %q: %w", item.Title, err)
		}

		duplicate, err := t.isDuplicate(ctx, id, staged)
		if err != nil {
			return err
		}
		if duplicate {
			duplicateCount++
			continue
		}

		staged[id] = struct{}{}
		stagedIDs = append(stagedIDs, id)

		record := t.buildRecord(ctx, id, item, runDate)
		batch.CreateNews(record)
		slog.Debug("News staged", "id", id, "title", record.Title, "date", record.Date)
	}

	if batch.Len() > 0 {
		ids, err := batch.Commit(ctx)
		if err != nil {
			return fmt.Errorf("failed to commit news: %w", err)
		}
		t.Count = len(ids)
		t.afterCommit(ctx, runDate, ids, stagedIDs)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"source", t.FeedConfig.Source,
		"duration", t.GetDuration(),
		"total", len(items),
		"filtered", filteredCount,
		"duplicates", duplicateCount,
		"created", t.Count)

	return nil
}

// isDuplicate checks the run itself, then the seen cache, then the store.
func (t *ScrapeNewsTask) isDuplicate(ctx context.Context, id string, staged map[string]struct{}) (bool, error) {
	if _, ok := staged[id]; ok {
		return true, nil
	}

	if t.cache != nil {
		seen, err := t.cache.Seen(ctx, id)
		if err != nil {
			slog.Warn("Seen cache lookup failed", "id", id, "error", err)
		} else if seen {
			return true, nil
		}
	}

	exists, err := t.sink.NewsExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check existing news: %w", err)
	}
	return exists, nil
}

func (t *ScrapeNewsTask) buildRecord(ctx context.Context, id string, item feed.Item, runDate string) store.News {
	settings := t.FeedConfig.Settings

	date := runDate
	if item.PublishedAt != nil {
		date = item.PublishedAt.In(t.location).Format(calendar.DateLayout)
	}

	description := item.Snippet
	image := item.Image("")

	if settings.ExtractContent && (image == "" || description == "") {
		if extracted := t.extract(ctx, item.Link); extracted != nil {
			description = cmp.Or(description, extracted.Excerpt)
			image = cmp.Or(image, extracted.Image)
		}
	}

	return store.News{
		ID:          id,
		Title:       item.Title,
		Link:        item.Link,
		Date:        date,
		Description: feed.Truncate(description, settings.MaxDescription),
		Img:         cmp.Or(image, settings.DefaultImage),
		Source:      t.FeedConfig.Source,
	}
}

// extract is best effort: a page that cannot be fetched or parsed leaves the record as is.
func (t *ScrapeNewsTask) extract(ctx context.Context, link string) *feed.Extracted {
	data, err := t.fetch(ctx, link)
	if err != nil {
		slog.Warn("Failed to fetch article page", "url", link, "error", err)
		return nil
	}

	extracted, err := t.contentExtractor.Run(data, link)
	if err != nil {
		slog.Warn("Failed to extract article content", "url", link, "error", err)
		return nil
	}

	return extracted
}

func (t *ScrapeNewsTask) afterCommit(ctx context.Context, runDate string, ids, linkIDs []string) {
	if t.cache != nil {
		if err := t.cache.Mark(ctx, linkIDs...); err != nil {
			slog.Warn("Failed to mark seen links", "error", err)
		}
	}

	if t.publisher != nil {
		err := t.publisher.Publish(events.SubjectNewsCreated, events.Event{
			Job:   string(t.Type),
			Date:  runDate,
			Count: len(ids),
			IDs:   ids,
		})
		if err != nil {
			slog.Warn("Failed to publish event", "type", string(t.Type), "error", err)
		}
	}
}

func (t *ScrapeNewsTask) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
