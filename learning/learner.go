package learning

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helvetic-systems/laborsense/core"
)

const (
	eventsFile = "events.json"
	scoresFile = "scores.json"

	// maxPersistedEvents caps the event log on flush; only the most
	// recent events are kept.
	maxPersistedEvents = 10000

	// searchFlushEvery batches search-event persistence to bound I/O.
	// Clicks and feedback are rarer and higher-value, so they flush
	// immediately.
	searchFlushEvery = 10

	// recentEventWindow is how far back clicks and feedback look for the
	// search event that produced them.
	recentEventWindow = 50

	clickBoostStep = 0.02
	feedbackStep   = 0.1
	minBoost       = -0.3
	maxBoost       = 0.5
)

// Learner records search, click and feedback events and maintains a learned
// per-document ranking boost. Recording never fails: persistence problems
// are logged only, since losing a single interaction event must not break
// the calling request.
type Learner struct {
	mu sync.Mutex

	path   string
	events []*core.SearchEvent
	scores map[string]*core.DocumentScore

	initialized      bool
	eventsSinceFlush int

	logger *slog.Logger
}

// Option configures a Learner.
type Option func(*Learner)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Learner) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// New creates a learner persisting under path. No I/O happens until Init or
// the first recorded event.
func New(path string, opts ...Option) *Learner {
	l := &Learner{
		path:   path,
		scores: make(map[string]*core.DocumentScore),
		logger: slog.Default().With("component", "learning"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init loads persisted events and scores. Idempotent; malformed or missing
// files are logged and treated as no prior state.
func (l *Learner) Init() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()
}

func (l *Learner) initLocked() {
	if l.initialized {
		return
	}

	if err := os.MkdirAll(l.path, 0o755); err != nil {
		l.logger.Warn("cannot create learning directory, operating in-memory only", "path", l.path, "err", err)
	}

	if data, err := os.ReadFile(filepath.Join(l.path, eventsFile)); err == nil {
		var events []*core.SearchEvent
		if err := json.Unmarshal(data, &events); err != nil {
			l.logger.Warn("malformed events file, starting empty", "err", err)
		} else {
			l.events = events
		}
	}

	if data, err := os.ReadFile(filepath.Join(l.path, scoresFile)); err == nil {
		var scores []*core.DocumentScore
		if err := json.Unmarshal(data, &scores); err != nil {
			l.logger.Warn("malformed scores file, starting empty", "err", err)
		} else {
			for _, score := range scores {
				l.scores[score.DocID] = score
			}
		}
	}

	l.initialized = true
	l.logger.Info("learning module initialized",
		"events", len(l.events), "documentScores", len(l.scores))
}

// NormalizeQuery is the canonical form used to match clicks and feedback to
// the search event that produced them.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// RecordSearch appends a search event and returns its ID. Persistence is
// batched: every searchFlushEvery-th event triggers a flush.
func (l *Learner) RecordSearch(query string, resultsCount int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()

	event := &core.SearchEvent{
		ID:             "search_" + uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Query:          NormalizeQuery(query),
		ResultsCount:   resultsCount,
		ClickedIDs:     []string{},
		FeedbackScores: map[string]int{},
	}
	l.events = append(l.events, event)

	l.eventsSinceFlush++
	if l.eventsSinceFlush >= searchFlushEvery {
		l.flushLocked()
	}
	return event.ID
}

// RecordClick notes that docID was clicked after searching for query. The
// most recent matching search event (within the last recentEventWindow) gets
// the click attributed; the document's boost becomes
// min(maxBoost, clickCount*clickBoostStep). Flushes immediately.
func (l *Learner) RecordClick(docID, query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()

	if event := l.findRecentEventLocked(NormalizeQuery(query)); event != nil {
		clicked := false
		for _, id := range event.ClickedIDs {
			if id == docID {
				clicked = true
				break
			}
		}
		if !clicked {
			event.ClickedIDs = append(event.ClickedIDs, docID)
		}
	}

	score := l.scoreLocked(docID)
	score.ClickCount++
	score.LearnedBoost = min(maxBoost, float64(score.ClickCount)*clickBoostStep)
	score.LastUpdated = time.Now().UTC()

	l.flushLocked()
}

// RecordFeedback records an explicit 1-5 rating for docID. Ratings outside
// the range are clamped. The rolling average feedback moves the boost by
// +feedbackStep when the average is >= 4 and -feedbackStep when <= 2,
// clamped to [minBoost, maxBoost]. Flushes immediately.
func (l *Learner) RecordFeedback(docID string, rating int, query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()

	rating = max(1, min(5, rating))

	if query != "" {
		if event := l.findRecentEventLocked(NormalizeQuery(query)); event != nil {
			event.FeedbackScores[docID] = rating
		}
	}

	score := l.scoreLocked(docID)
	score.AvgFeedback = (score.AvgFeedback*float64(score.FeedbackCount) + float64(rating)) /
		float64(score.FeedbackCount+1)
	score.FeedbackCount++

	if score.AvgFeedback >= 4 {
		score.LearnedBoost += feedbackStep
	} else if score.AvgFeedback <= 2 {
		score.LearnedBoost -= feedbackStep
	}
	score.LearnedBoost = max(minBoost, min(maxBoost, score.LearnedBoost))
	score.LastUpdated = time.Now().UTC()

	l.flushLocked()
}

// LearnedBoost returns the learned boost for a document, or 0 for documents
// that have never received a click or feedback event. O(1); this is the
// integration point consumed by the relevance engine on every result.
func (l *Learner) LearnedBoost(docID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()

	if score, ok := l.scores[docID]; ok {
		return score.LearnedBoost
	}
	return 0
}

// findRecentEventLocked scans the last recentEventWindow events, newest
// first, for one matching the normalized query.
func (l *Learner) findRecentEventLocked(normalized string) *core.SearchEvent {
	start := max(0, len(l.events)-recentEventWindow)
	for i := len(l.events) - 1; i >= start; i-- {
		if l.events[i].Query == normalized {
			return l.events[i]
		}
	}
	return nil
}

// scoreLocked returns the DocumentScore for docID, creating it lazily on the
// first interaction. Once created a score is never deleted.
func (l *Learner) scoreLocked(docID string) *core.DocumentScore {
	if score, ok := l.scores[docID]; ok {
		return score
	}
	score := &core.DocumentScore{
		DocID:       docID,
		BaseScore:   1.0,
		LastUpdated: time.Now().UTC(),
	}
	l.scores[docID] = score
	return score
}

// Flush rewrites both JSON files from the current in-memory state.
func (l *Learner) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()
	l.flushLocked()
}

func (l *Learner) flushLocked() {
	l.eventsSinceFlush = 0

	events := l.events
	if len(events) > maxPersistedEvents {
		events = events[len(events)-maxPersistedEvents:]
	}
	if events == nil {
		events = []*core.SearchEvent{}
	}
	if data, err := json.MarshalIndent(events, "", "  "); err != nil {
		l.logger.Error("cannot serialize events", "err", err)
	} else if err := os.WriteFile(filepath.Join(l.path, eventsFile), data, 0o644); err != nil {
		l.logger.Error("cannot persist events, data kept in memory", "err", err)
	}

	scores := make([]*core.DocumentScore, 0, len(l.scores))
	for _, score := range l.scores {
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].DocID < scores[j].DocID })
	if data, err := json.MarshalIndent(scores, "", "  "); err != nil {
		l.logger.Error("cannot serialize scores", "err", err)
	} else if err := os.WriteFile(filepath.Join(l.path, scoresFile), data, 0o644); err != nil {
		l.logger.Error("cannot persist scores, data kept in memory", "err", err)
	}
}

// Close forces a final flush.
func (l *Learner) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		l.flushLocked()
	}
}
