// Copyright 2025 Helvetic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package collectors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/panjf2000/ants/v2"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/refdata"
)

const (
	feedTimeout    = 30 * time.Second
	fetchTimeout   = 15 * time.Second
	maxContentSize = 5000
	collectorAgent = "Swiss-AI-Labor-Market-Collector/1.0"

	// fullExtractThreshold: articles scoring above this on both axes get
	// their full body scraped instead of keeping the feed snippet.
	fullExtractThreshold = 0.3
)

// bodySelectors are tried in order when extracting an article body.
var bodySelectors = []string{
	"article",
	"[role=main]",
	".article-body",
	".story-body",
	".content-body",
	"main",
}

// Article is one relevant feed item.
type Article struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	Link           string    `json:"link"`
	PubDate        time.Time `json:"pubDate"`
	Source         string    `json:"source"`
	SourceName     string    `json:"sourceName"`
	AIRelevance    float64   `json:"aiRelevance"`
	LaborRelevance float64   `json:"laborRelevance"`
	Keywords       []string  `json:"keywords"`
}

// Result summarizes one collection run.
type Result struct {
	Articles         []Article `json:"-"`
	ArticlesFetched  int       `json:"articlesFetched"`
	ArticlesRelevant int       `json:"articlesRelevant"`
	ArticlesSkipped  int       `json:"articlesSkipped"`
	Errors           []string  `json:"errors,omitempty"`
}

// Collector fetches and filters news feeds.
type Collector struct {
	feeds       []refdata.Feed
	cache       *Cache
	client      *http.Client
	parser      *gofeed.Parser
	concurrency int
	extractBody bool
	logger      *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithSources restricts collection to the named source keys (nzz, srf, ...).
func WithSources(keys ...string) CollectorOption {
	return func(c *Collector) {
		wanted := make(map[string]bool, len(keys))
		for _, key := range keys {
			wanted[key] = true
		}
		var filtered []refdata.Feed
		for _, feed := range c.feeds {
			if wanted[feed.Key] {
				filtered = append(filtered, feed)
			}
		}
		c.feeds = filtered
	}
}

// WithCache enables skipping of already-collected articles.
func WithCache(cache *Cache) CollectorOption {
	return func(c *Collector) {
		c.cache = cache
	}
}

// WithHTTPClient overrides the HTTP client used for body extraction.
func WithHTTPClient(client *http.Client) CollectorOption {
	return func(c *Collector) {
		c.client = client
	}
}

// WithConcurrency sets the number of feeds fetched in parallel.
func WithConcurrency(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithBodyExtraction toggles scraping of full article bodies for highly
// relevant items. On by default.
func WithBodyExtraction(enabled bool) CollectorOption {
	return func(c *Collector) {
		c.extractBody = enabled
	}
}

// WithCollectorLogger sets a custom logger.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewCollector creates a news collector over the configured feed sources.
func NewCollector(opts ...CollectorOption) *Collector {
	parser := gofeed.NewParser()
	parser.UserAgent = collectorAgent

	c := &Collector{
		feeds:       refdata.Feeds(),
		client:      &http.Client{Timeout: fetchTimeout},
		parser:      parser,
		concurrency: 4,
		extractBody: true,
		logger:      slog.Default().With("component", "collectors"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches all configured feeds concurrently, filters items by
// AI/labor keyword relevance, dedupes and sorts by combined relevance.
// Per-feed failures are collected into the result, never fatal.
func (c *Collector) Collect(ctx context.Context) Result {
	c.logger.Info("starting news collection", "sources", len(c.feeds))

	type feedJob struct {
		url        string
		sourceKey  string
		sourceName string
	}
	var jobs []feedJob
	for _, feed := range c.feeds {
		for _, url := range feed.URLs {
			jobs = append(jobs, feedJob{url: url, sourceKey: feed.Key, sourceName: feed.Name})
		}
	}

	pool, err := ants.NewPool(c.concurrency)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("worker pool: %v", err)}}
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		all     []Article
		fetched int
		errs    []string
	)

	for _, job := range jobs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			articles, total, err := c.fetchFeed(ctx, job.url, job.sourceKey, job.sourceName)
			mu.Lock()
			defer mu.Unlock()
			fetched += total
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", job.sourceName, err))
				return
			}
			all = append(all, articles...)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Sprintf("%s: submit: %v", job.sourceName, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	unique := dedupe(all)
	skipped := 0
	if c.cache != nil {
		fresh := unique[:0]
		for _, article := range unique {
			if c.cache.Seen(article.ID) {
				skipped++
				continue
			}
			fresh = append(fresh, article)
		}
		unique = fresh
		for _, article := range unique {
			c.cache.MarkSeen(article)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].AIRelevance+unique[i].LaborRelevance >
			unique[j].AIRelevance+unique[j].LaborRelevance
	})

	c.logger.Info("news collection complete",
		"fetched", fetched, "relevant", len(unique), "skipped", skipped, "errors", len(errs))

	return Result{
		Articles:         unique,
		ArticlesFetched:  fetched,
		ArticlesRelevant: len(unique),
		ArticlesSkipped:  skipped,
		Errors:           errs,
	}
}

// IngestDocuments renders collected articles as markdown ingest documents.
func (r Result) IngestDocuments() []core.IngestDocument {
	docs := make([]core.IngestDocument, 0, len(r.Articles))
	for _, article := range r.Articles {
		docs = append(docs, core.IngestDocument{
			ID:      article.ID,
			Content: article.Markdown(),
			Type:    core.DocumentTypeMarkdown,
			Metadata: core.Metadata{
				Source:    "news",
				SourceURL: article.Link,
				Title:     article.Title,
				Date:      article.PubDate.Format("2006-01-02"),
				Tags:      append([]string{"news", article.Source}, article.Keywords...),
			},
		})
	}
	return docs
}

// Markdown renders the article in the stored document format.
func (a Article) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	fmt.Fprintf(&b, "**Quelle:** %s\n", a.SourceName)
	fmt.Fprintf(&b, "**Datum:** %s\n", a.PubDate.Format("02.01.2006"))
	fmt.Fprintf(&b, "**Link:** %s\n\n", a.Link)
	fmt.Fprintf(&b, "## Zusammenfassung\n%s\n\n", a.Description)
	fmt.Fprintf(&b, "## Inhalt\n%s\n\n", a.Content)
	fmt.Fprintf(&b, "## Relevanz\n")
	fmt.Fprintf(&b, "- AI-Relevanz: %.0f%%\n", a.AIRelevance*100)
	fmt.Fprintf(&b, "- Arbeitsmarkt-Relevanz: %.0f%%\n", a.LaborRelevance*100)
	fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(a.Keywords, ", "))
	return b.String()
}

func (c *Collector) fetchFeed(ctx context.Context, feedURL, sourceKey, sourceName string) ([]Article, int, error) {
	c.logger.Debug("fetching feed", "source", sourceName, "url", feedURL)

	feedCtx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	feed, err := c.parser.ParseURLWithContext(feedURL, feedCtx)
	if err != nil {
		return nil, 0, err
	}

	var articles []Article
	for _, item := range feed.Items {
		description := item.Description
		if description == "" {
			description = item.Content
		}

		aiScore, aiMatches := keywordRelevance(item.Title+" "+description, refdata.AIKeywords())
		laborScore, laborMatches := keywordRelevance(item.Title+" "+description, refdata.LaborKeywords())

		// Relevant when both dimensions hit, or either is strong.
		if !((aiScore > 0 && laborScore > 0) || aiScore > 0.5 || laborScore > 0.5) {
			continue
		}

		content := description
		if c.extractBody && aiScore > fullExtractThreshold && laborScore > fullExtractThreshold && item.Link != "" {
			if extracted := c.extractContent(ctx, item.Link); extracted != "" {
				content = extracted
			}
		}

		pubDate := time.Now().UTC()
		if item.PublishedParsed != nil {
			pubDate = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pubDate = *item.UpdatedParsed
		}

		link := item.Link
		if link == "" {
			link = item.Title
		}

		title := item.Title
		if title == "" {
			title = "Untitled"
		}

		articles = append(articles, Article{
			ID:             core.ContentID("news-"+sourceKey, link),
			Title:          title,
			Description:    description,
			Content:        content,
			Link:           item.Link,
			PubDate:        pubDate,
			Source:         sourceKey,
			SourceName:     sourceName,
			AIRelevance:    aiScore,
			LaborRelevance: laborScore,
			Keywords:       append(aiMatches, laborMatches...),
		})
	}

	return articles, len(feed.Items), nil
}

// extractContent scrapes the article body from its page. Best effort; an
// empty string means the feed snippet stays.
func (c *Collector) extractContent(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", collectorAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("body extraction failed", "url", url, "err", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, header, footer, aside, .advertisement, .ad, .social-share").Remove()

	for _, selector := range bodySelectors {
		content := strings.TrimSpace(doc.Find(selector).Text())
		if len(content) > 200 {
			return truncate(content, maxContentSize)
		}
	}
	return truncate(strings.TrimSpace(doc.Find("body").Text()), maxContentSize)
}

// keywordRelevance scores text 0-1 against a keyword list: three matches or
// more count as fully relevant.
func keywordRelevance(text string, keywords []string) (float64, []string) {
	lower := strings.ToLower(text)
	var matches []string
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matches = append(matches, keyword)
		}
	}
	score := float64(len(matches)) / 3
	if score > 1 {
		score = 1
	}
	return score, matches
}

func dedupe(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, article := range articles {
		if seen[article.ID] {
			continue
		}
		seen[article.ID] = true
		out = append(out, article)
	}
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
