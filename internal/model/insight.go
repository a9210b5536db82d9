package model

import "time"

// InsightRefreshInterval is how long a computed insight is considered
// fresh. The next_refresh_at column is populated from it at creation;
// acting on staleness is left to a future recompute job.
const InsightRefreshInterval = 7 * 24 * time.Hour

// InsightPayload is the structured result of the external insight
// computation for one industry.
type InsightPayload struct {
	Summary         string   `json:"summary"`
	Outlook         string   `json:"outlook"`
	TrendingSkills  []string `json:"trending_skills"`
	MedianSalaryUSD int      `json:"median_salary_usd"`
}

// Insight is a cached, category-keyed industry insight. At most one row
// exists per category and rows are never mutated after creation.
type Insight struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Payload       InsightPayload `json:"payload"`
	NextRefreshAt time.Time      `json:"next_refresh_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewInsight builds an Insight for category with the freshness horizon
// set from now.
func NewInsight(id, category string, payload InsightPayload, now time.Time) *Insight {
	return &Insight{
		ID:            id,
		Category:      category,
		Payload:       payload,
		NextRefreshAt: now.Add(InsightRefreshInterval),
		CreatedAt:     now,
	}
}
