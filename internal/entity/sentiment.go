package entity

import "time"

// Platform is the source of a social post.
type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformReddit  Platform = "reddit"
	PlatformNews    Platform = "news"
)

// MarketMood is the coarse label derived from a sentiment score.
type MarketMood string

const (
	MoodVeryBearish MarketMood = "very_bearish"
	MoodBearish     MarketMood = "bearish"
	MoodNeutral     MarketMood = "neutral"
	MoodBullish     MarketMood = "bullish"
	MoodVeryBullish MarketMood = "very_bullish"
)

// MoodFromScore maps a score in [-1, 1] onto a mood using static thresholds.
func MoodFromScore(score float64) MarketMood {
	switch {
	case score < -0.6:
		return MoodVeryBearish
	case score < -0.2:
		return MoodBearish
	case score <= 0.2:
		return MoodNeutral
	case score <= 0.6:
		return MoodBullish
	default:
		return MoodVeryBullish
	}
}

// SocialPost is one example post of a sentiment summary.
type SocialPost struct {
	ID        string    `json:"id"`
	Platform  Platform  `json:"platform"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	Sentiment float64   `json:"sentiment"`
}

// SocialSentiment is the sentiment summary for one asset.
type SocialSentiment struct {
	Asset            string       `json:"asset"`
	Posts            []SocialPost `json:"posts"`
	OverallSentiment float64      `json:"overallSentiment"`
	MarketMood       MarketMood   `json:"marketMood"`
	Volume           int          `json:"volume"`
	TopMentions      []string     `json:"topMentions"`
}

// Trend is the three-way label of a quick sentiment reading.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// KeywordSentiment pairs a keyword with its score.
type KeywordSentiment struct {
	Word      string  `json:"word"`
	Sentiment float64 `json:"sentiment"`
}

// QuickSentiment is the lightweight sentiment reading shown on asset cards.
type QuickSentiment struct {
	Asset      string             `json:"asset"`
	Score      float64            `json:"score"`
	Trend      Trend              `json:"trend"`
	Confidence float64            `json:"confidence"`
	Keywords   []KeywordSentiment `json:"keywords"`
}
