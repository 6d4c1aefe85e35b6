package repository

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

const (
	minPosts        = 15
	postCountSpread = 15
	topMentionLimit = 5
	quickKeywords   = 3
)

var (
	platforms = []entity.Platform{entity.PlatformTwitter, entity.PlatformReddit, entity.PlatformNews}
	authors   = []string{
		"CryptoExpert", "StockTrader123", "FinanceDaily",
		"BlockchainGuru", "WallStreetPro", "TechInvestor",
		"MarketWatcher", "CoinAnalyst", "TradingView",
	}

	positiveTemplates = []string{
		"{asset} showing strong bullish signals today! Price target increased by analysts. #Investing #Bullish",
		"Just bought more {asset}! The technical indicators are incredibly strong. #HODL #ToTheMoon",
		"Breaking: {asset} announces new partnership that could revolutionize the market! Expect major gains.",
		"{asset} outperforming the market again today. This trend looks sustainable. #InvestmentOpportunity",
		"Analysts upgrade {asset} rating to 'Strong Buy' citing improved fundamentals and market position.",
	}
	neutralTemplates = []string{
		"{asset} trading sideways today. Watching key support levels at current price. #Trading #Markets",
		"Mixed signals for {asset} as volume decreases but price holds steady. Waiting for clearer direction.",
		"New report on {asset} suggests stable growth potential with moderate risk. Worth considering.",
		"{asset} meeting expectations this quarter. No surprises in the latest data release.",
		"Holding my position in {asset} for now. Market uncertainty keeping prices in a tight range.",
	}
	negativeTemplates = []string{
		"{asset} breaking below key support levels. Could see further downside pressure. #Trading #Bearish",
		"Just sold my {asset} position. The risk-reward ratio no longer makes sense in this market.",
		"Concerning news for {asset} holders as company faces regulatory challenges. Proceed with caution.",
		"{asset} showing weakness against competitors. Market share declining according to new report.",
		"Technical analysis suggests {asset} in a clear downtrend. Lower targets expected in coming weeks.",
	}

	quickKeywordPool = []string{"volatility", "earnings", "growth", "innovation", "regulation"}

	nonWordPattern = regexp.MustCompile(`[^\w]`)
)

type socialMediaRepository struct {
	log *logger.Logger
	rnd *utils.Random
	now func() time.Time
}

// NewSocialMediaRepository creates a SocialMediaRepository that synthesizes posts
// and scores them with a word lexicon.
func NewSocialMediaRepository(log *logger.Logger, rnd *utils.Random) SocialMediaRepository {
	if rnd == nil {
		rnd = utils.NewTimeSeededRandom()
	}
	return &socialMediaRepository{log: log, rnd: rnd, now: time.Now}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func (r *socialMediaRepository) pickTemplates() []string {
	direction := r.rnd.Float64()
	switch {
	case direction > 0.6:
		return positiveTemplates
	case direction > 0.3:
		return neutralTemplates
	default:
		return negativeTemplates
	}
}

func (r *socialMediaRepository) generatePost(asset string, index int, now time.Time) entity.SocialPost {
	platform := platforms[r.rnd.IntN(len(platforms))]
	author := authors[r.rnd.IntN(len(authors))]

	pool := r.pickTemplates()
	content := strings.ReplaceAll(pool[r.rnd.IntN(len(pool))], "{asset}", asset)

	// AFINN comparative is on a -5..5 scale.
	score := analyzeSentiment(content).Comparative/5 + r.rnd.Between(-0.2, 0.2)

	return entity.SocialPost{
		ID:        fmt.Sprintf("post_%d_%s", index, uuid.NewString()),
		Platform:  platform,
		Author:    author,
		Content:   content,
		Timestamp: now.Add(-time.Duration(r.rnd.Float64() * float64(24*time.Hour))),
		Likes:     r.rnd.IntN(1000),
		Sentiment: clampUnit(score),
	}
}

func (r *socialMediaRepository) GetSocialSentiment(ctx context.Context, asset string) (*entity.SocialSentiment, error) {
	now := r.now()
	count := minPosts + r.rnd.IntN(postCountSpread)

	posts := make([]entity.SocialPost, 0, count)
	var weighted, weights float64
	for i := 0; i < count; i++ {
		p := r.generatePost(asset, i, now)
		posts = append(posts, p)
		w := float64(p.Likes + 1)
		weighted += p.Sentiment * w
		weights += w
	}

	overall := clampUnit(weighted / weights)

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	r.log.DebugContext(ctx, "Generated social sentiment",
		logger.StringField("asset", asset),
		logger.IntField("posts", count),
		logger.FloatField("overall", overall))

	return &entity.SocialSentiment{
		Asset:            asset,
		Posts:            posts,
		OverallSentiment: overall,
		MarketMood:       entity.MoodFromScore(overall),
		Volume:           len(posts),
		TopMentions:      topMentions(asset, posts),
	}, nil
}

// topMentions counts words of at least four characters across all posts, skipping
// hashtags, mentions and fragments of the asset name, and returns the most frequent.
// Ties keep first-seen order.
func topMentions(asset string, posts []entity.SocialPost) []string {
	assetLower := strings.ToLower(asset)
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, p := range posts {
		for _, word := range strings.Fields(p.Content) {
			if utf8.RuneCountInString(word) < 4 || strings.HasPrefix(word, "#") || strings.HasPrefix(word, "@") {
				continue
			}
			clean := nonWordPattern.ReplaceAllString(strings.ToLower(word), "")
			if clean == "" || clean == "asset" || strings.Contains(assetLower, clean) {
				continue
			}
			if _, seen := counts[clean]; !seen {
				order = append(order, clean)
			}
			counts[clean]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topMentionLimit {
		order = order[:topMentionLimit]
	}
	return order
}

func (r *socialMediaRepository) GetQuickSentiment(ctx context.Context, asset string) (*entity.QuickSentiment, error) {
	score := r.rnd.Between(-1, 1)

	trend := entity.TrendNeutral
	switch {
	case score > 0.3:
		trend = entity.TrendBullish
	case score < -0.3:
		trend = entity.TrendBearish
	}

	keywords := make([]entity.KeywordSentiment, 0, len(quickKeywordPool))
	for _, w := range quickKeywordPool {
		keywords = append(keywords, entity.KeywordSentiment{Word: w, Sentiment: r.rnd.Between(-1, 1)})
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		return math.Abs(keywords[i].Sentiment) > math.Abs(keywords[j].Sentiment)
	})

	return &entity.QuickSentiment{
		Asset:      asset,
		Score:      score,
		Trend:      trend,
		Confidence: r.rnd.Between(0.5, 1),
		Keywords:   keywords[:quickKeywords],
	}, nil
}
