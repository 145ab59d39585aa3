package learning

import (
	"sort"
	"time"

	"github.com/helvetic-systems/laborsense/core"
)

// learningCurveDays is the trailing window of the day-bucketed relevance
// curve in Stats.
const learningCurveDays = 30

// QueryCount is a query and how often it was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// DocumentRank is a document ranked by its learned score.
type DocumentRank struct {
	DocID string  `json:"docId"`
	Score float64 `json:"score"`
}

// CurvePoint is one day of the relevance curve. Relevance per event is
// clicks divided by results count, averaged per day.
type CurvePoint struct {
	Date         string  `json:"date"`
	AvgRelevance float64 `json:"avgRelevance"`
}

// Stats is a diagnostic aggregation over the recorded interaction history.
// It is a dashboard view and plays no part in ranking.
type Stats struct {
	TotalSearches    int            `json:"totalSearches"`
	TotalClicks      int            `json:"totalClicks"`
	TotalFeedback    int            `json:"totalFeedback"`
	AvgClickRate     float64        `json:"avgClickRate"`
	AvgFeedbackScore float64        `json:"avgFeedbackScore"`
	TopQueries       []QueryCount   `json:"topQueries"`
	TopDocuments     []DocumentRank `json:"topDocuments"`
	LearningCurve    []CurvePoint   `json:"learningCurve"`
}

// Stats aggregates totals, click-through rate, top queries, top documents
// and the trailing 30-day relevance curve.
func (l *Learner) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()

	stats := Stats{TotalSearches: len(l.events)}

	feedbackSum := 0
	queryCounts := make(map[string]int)
	for _, event := range l.events {
		stats.TotalClicks += len(event.ClickedIDs)
		stats.TotalFeedback += len(event.FeedbackScores)
		for _, rating := range event.FeedbackScores {
			feedbackSum += rating
		}
		queryCounts[event.Query]++
	}

	if stats.TotalSearches > 0 {
		stats.AvgClickRate = float64(stats.TotalClicks) / float64(stats.TotalSearches)
	}
	if stats.TotalFeedback > 0 {
		stats.AvgFeedbackScore = float64(feedbackSum) / float64(stats.TotalFeedback)
	}

	stats.TopQueries = topQueries(queryCounts, 10)
	stats.TopDocuments = l.topDocumentsLocked(10)
	stats.LearningCurve = l.learningCurveLocked()

	return stats
}

func topQueries(counts map[string]int, limit int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		out = append(out, QueryCount{Query: query, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topDocumentsLocked ranks documents by learned boost weighted with click
// count; the reported score is baseScore + learnedBoost.
func (l *Learner) topDocumentsLocked(limit int) []DocumentRank {
	scores := make([]*core.DocumentScore, 0, len(l.scores))
	for _, score := range l.scores {
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i, j int) bool {
		wi := scores[i].LearnedBoost + float64(scores[i].ClickCount)*0.01
		wj := scores[j].LearnedBoost + float64(scores[j].ClickCount)*0.01
		if wi != wj {
			return wi > wj
		}
		return scores[i].DocID < scores[j].DocID
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}

	out := make([]DocumentRank, len(scores))
	for i, score := range scores {
		out[i] = DocumentRank{DocID: score.DocID, Score: score.BaseScore + score.LearnedBoost}
	}
	return out
}

func (l *Learner) learningCurveLocked() []CurvePoint {
	cutoff := time.Now().UTC().AddDate(0, 0, -learningCurveDays)

	daily := make(map[string][]float64)
	for _, event := range l.events {
		if event.Timestamp.Before(cutoff) {
			continue
		}
		relevance := float64(len(event.ClickedIDs)) / float64(max(1, event.ResultsCount))
		day := event.Timestamp.Format("2006-01-02")
		daily[day] = append(daily[day], relevance)
	}

	curve := make([]CurvePoint, 0, len(daily))
	for day, values := range daily {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		curve = append(curve, CurvePoint{Date: day, AvgRelevance: sum / float64(len(values))})
	}
	sort.Slice(curve, func(i, j int) bool { return curve[i].Date < curve[j].Date })
	return curve
}

// Export bundles stats, all document scores and the most recent events for
// the dashboard API.
type Export struct {
	Stats          Stats                 `json:"stats"`
	DocumentScores []*core.DocumentScore `json:"documentScores"`
	RecentEvents   []*core.SearchEvent   `json:"recentEvents"`
}

// Export returns the dashboard export: aggregated stats, every document
// score, and the last 100 events.
func (l *Learner) Export() Export {
	stats := l.Stats()

	l.mu.Lock()
	defer l.mu.Unlock()

	scores := make([]*core.DocumentScore, 0, len(l.scores))
	for _, score := range l.scores {
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].DocID < scores[j].DocID })

	recent := l.events
	if len(recent) > 100 {
		recent = recent[len(recent)-100:]
	}

	return Export{Stats: stats, DocumentScores: scores, RecentEvents: recent}
}
