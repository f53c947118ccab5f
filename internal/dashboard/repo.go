package dashboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/types"
)

// Repository aggregates SEO and AI-visibility KPI totals from Postgres.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dashboard aggregates repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SEOTotals aggregates the latest in-period summary row of every campaign
// under the client. Position averages come from the freshest capture;
// movement counts sum across campaigns.
func (r *Repository) SEOTotals(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOTotals, error) {
	var row struct {
		AvgKeywordRank   *float64
		TrackedKeywords  int64
		Top3Keywords     int64
		Top10Keywords    int64
		ImprovedKeywords int64
		DeclinedKeywords int64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			AVG(rs.avg_position)       AS avg_keyword_rank,
			COALESCE(SUM(rs.tracked_keywords), 0)  AS tracked_keywords,
			COALESCE(SUM(rs.top3_keywords), 0)     AS top3_keywords,
			COALESCE(SUM(rs.top10_keywords), 0)    AS top10_keywords,
			COALESCE(SUM(rs.improved_keywords), 0) AS improved_keywords,
			COALESCE(SUM(rs.declined_keywords), 0) AS declined_keywords
		FROM ranking_summaries rs
		JOIN campaigns c ON c.id = rs.campaign_id
		WHERE c.client_id = ?
		  AND rs.captured_on = (
			SELECT MAX(rs2.captured_on) FROM ranking_summaries rs2
			WHERE rs2.campaign_id = rs.campaign_id
			  AND rs2.captured_on BETWEEN ? AND ?
		  )
	`, clientID, period.StartString(), period.EndString()).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &SEOTotals{
		TrackedKeywords:  row.TrackedKeywords,
		Top3Keywords:     row.Top3Keywords,
		Top10Keywords:    row.Top10Keywords,
		ImprovedKeywords: row.ImprovedKeywords,
		DeclinedKeywords: row.DeclinedKeywords,
	}
	if row.AvgKeywordRank != nil {
		totals.AvgKeywordRank = *row.AvgKeywordRank
	}
	return totals, nil
}

// SEOSeries builds the SEO chart series. Distribution and movers come from
// the freshest in-period capture per campaign; the trend walks every capture
// day in the range.
func (r *Repository) SEOSeries(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOSeries, error) {
	out := &SEOSeries{}
	start, end := period.StartString(), period.EndString()

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			CASE
				WHEN kr.position <= 3 THEN 'Top 3'
				WHEN kr.position <= 10 THEN '4-10'
				WHEN kr.position <= 20 THEN '11-20'
				ELSE '21+'
			END AS label,
			COUNT(*) AS value
		FROM keyword_rankings kr
		JOIN campaigns c ON c.id = kr.campaign_id
		WHERE c.client_id = ?
		  AND kr.captured_on = (
			SELECT MAX(kr2.captured_on) FROM keyword_rankings kr2
			WHERE kr2.campaign_id = kr.campaign_id
			  AND kr2.captured_on BETWEEN ? AND ?
		  )
		GROUP BY label
		ORDER BY MIN(kr.position)
	`, clientID, start, end).Scan(&out.RankDistribution).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(rs.captured_on, 'YYYY-MM-DD') AS label,
			AVG(rs.avg_position) AS value
		FROM ranking_summaries rs
		JOIN campaigns c ON c.id = rs.campaign_id
		WHERE c.client_id = ?
		  AND rs.captured_on BETWEEN ? AND ?
		GROUP BY rs.captured_on
		ORDER BY rs.captured_on
	`, clientID, start, end).Scan(&out.RankTrend).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			kr.keyword AS label,
			(kr.previous_position - kr.position) AS value
		FROM keyword_rankings kr
		JOIN campaigns c ON c.id = kr.campaign_id
		WHERE c.client_id = ?
		  AND kr.previous_position IS NOT NULL
		  AND kr.captured_on = (
			SELECT MAX(kr2.captured_on) FROM keyword_rankings kr2
			WHERE kr2.campaign_id = kr.campaign_id
			  AND kr2.captured_on BETWEEN ? AND ?
		  )
		ORDER BY ABS(kr.previous_position - kr.position) DESC, kr.keyword
		LIMIT 10
	`, clientID, start, end).Scan(&out.TopMovers).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// AISeries builds the AI-visibility chart series, scoped like AITotals.
func (r *Repository) AISeries(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AISeries, error) {
	out := &AISeries{}
	start, end := period.StartString(), period.EndString()

	scope := ""
	var scopeArg any
	switch {
	case brandID != nil:
		scope, scopeArg = " AND m.brand_id = ?", *brandID
	case clientID != nil:
		scope, scopeArg = " AND b.client_id = ?", *clientID
	}
	args := func() []any {
		base := []any{start, end}
		if scope != "" {
			base = append(base, scopeArg)
		}
		return base
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(m.captured_on, 'YYYY-MM-DD') AS label,
			COUNT(*) FILTER (WHERE m.mentioned) AS value
		FROM ai_mentions m
		JOIN brands b ON b.id = m.brand_id
		WHERE m.captured_on BETWEEN ? AND ?`+scope+`
		GROUP BY m.captured_on
		ORDER BY m.captured_on
	`, args()...).Scan(&out.MentionsOverTime).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(m.captured_on, 'YYYY-MM-DD') AS label,
			100.0 * COUNT(*) FILTER (WHERE m.mentioned AND m.position IS NOT NULL AND m.position <= 3)
				/ COUNT(*) AS value
		FROM ai_mentions m
		JOIN brands b ON b.id = m.brand_id
		WHERE m.captured_on BETWEEN ? AND ?`+scope+`
		GROUP BY m.captured_on
		ORDER BY m.captured_on
	`, args()...).Scan(&out.ShareOfVoiceTrend).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			CASE
				WHEN m.sentiment > 0.2 THEN 'Positive'
				WHEN m.sentiment < -0.2 THEN 'Negative'
				ELSE 'Neutral'
			END AS label,
			COUNT(*) AS value
		FROM ai_mentions m
		JOIN brands b ON b.id = m.brand_id
		WHERE m.mentioned
		  AND m.captured_on BETWEEN ? AND ?`+scope+`
		GROUP BY label
		ORDER BY value DESC
	`, args()...).Scan(&out.SentimentBreakdown).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// AITotals aggregates answer-engine probe results, scoped to a single brand
// or to every brand under a client.
func (r *Repository) AITotals(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AITotals, error) {
	var row struct {
		BrandMentions     int64
		AIVisibilityScore *float64
		ShareOfVoice      *float64
		AvgSentiment      *float64
	}

	query := `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE m.mentioned), 0) AS brand_mentions,
			100.0 * COUNT(*) FILTER (WHERE m.mentioned) / NULLIF(COUNT(*), 0) AS ai_visibility_score,
			100.0 * COUNT(*) FILTER (WHERE m.mentioned AND m.position IS NOT NULL AND m.position <= 3)
				/ NULLIF(COUNT(*), 0) AS share_of_voice,
			AVG(m.sentiment) FILTER (WHERE m.mentioned) AS avg_sentiment
		FROM ai_mentions m
		JOIN brands b ON b.id = m.brand_id
		WHERE m.captured_on BETWEEN ? AND ?
	`
	args := []any{period.StartString(), period.EndString()}
	switch {
	case brandID != nil:
		query += " AND m.brand_id = ?"
		args = append(args, *brandID)
	case clientID != nil:
		query += " AND b.client_id = ?"
		args = append(args, *clientID)
	}

	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}

	totals := &AITotals{BrandMentions: row.BrandMentions}
	if row.AIVisibilityScore != nil {
		totals.AIVisibilityScore = *row.AIVisibilityScore
	}
	if row.ShareOfVoice != nil {
		totals.ShareOfVoice = *row.ShareOfVoice
	}
	if row.AvgSentiment != nil {
		totals.AvgSentiment = *row.AvgSentiment
	}
	return totals, nil
}
