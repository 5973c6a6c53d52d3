// Package engagement scores comments for reply opportunities and writes the
// channel's canned replies and promotions.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
)

// ReplyType selects the reply template family.
type ReplyType string

// ReplyType constants, in priority order.
const (
	ReplyFirstComment ReplyType = "first_comment"
	ReplyQuestion     ReplyType = "question"
	ReplyPositive     ReplyType = "positive"
	ReplyGeneral      ReplyType = "general"
)

// Model tags recorded on generated comments.
const (
	ModelBusinessReply  = "simple_business_reply"
	ModelChannelPromo   = "simple_channel_promo"
	ModelUserSimulation = "simple_user_simulation"
)

// Skip reasons reported by Analyze.
const (
	ReasonAIGenerated    = "Skipping AI-generated comment"
	ReasonAlreadyReplied = "Channel already replied"
)

// ErrUnknownOffer is returned when a promotion names an offer that does not exist.
var ErrUnknownOffer = errors.New("unknown offer")

// Offer is a product the channel promotes.
type Offer struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Pitch    string   `json:"info"`
	Keywords []string `json:"keywords"`
}

// DefaultOffers is the built-in offer catalogue.
var DefaultOffers = []Offer{
	{
		Key:      "techmaster",
		Name:     "TechMaster Course",
		Pitch:    "Online programming course. $99 (50% off). Link: techcourse.com/discount",
		Keywords: []string{"programming", "coding", "tech", "learn"},
	},
	{
		Key:      "marketing",
		Name:     "Marketing Guide",
		Pitch:    "Digital marketing ebook. $29. Link: marketing-guide.com/buy",
		Keywords: []string{"marketing", "business", "grow"},
	},
}

var (
	positiveWords = []string{"great", "helpful", "love", "amazing", "perfect", "thanks"}
	questionWords = []string{"how", "can you", "tutorial", "more"}
)

// Scores are kept in tenths so sums stay exact.
const (
	positiveScore  = 3
	questionScore  = 4
	firstScore     = 5
	offerScore     = 3
	replyThreshold = 3
	maxScore       = 10
)

var replyTemplates = map[ReplyType][]string{
	ReplyFirstComment: {
		"Thanks for being first! I appreciate early viewers.",
		"First! Love the enthusiasm.",
	},
	ReplyQuestion: {
		"Great question! I have more content on this coming soon.",
		"Thanks for asking! This is covered in my other videos.",
	},
	ReplyPositive: {
		"Thank you! Comments like yours motivate me to keep creating.",
		"Really appreciate the kind words!",
	},
	ReplyGeneral: {
		"Thanks for watching!",
		"Appreciate the engagement!",
	},
}

var userCommentTemplates = []string{
	"Great video!",
	"This is really helpful, thanks!",
	"Love this content!",
	"First time I understood this topic.",
	"Can you do more tutorials like this?",
	"Amazing explanation!",
	"This helped me a lot.",
	"Keep up the great work!",
	"Exactly what I was looking for.",
	"Perfect timing, I needed this.",
}

var promoTemplates = []string{
	"Hey everyone! Thanks for watching. I've created %s for viewers who want to go deeper: %s",
	"Loving the engagement on this video! For those interested, check out %s: %s",
}

// Analysis is the verdict on one comment.
type Analysis struct {
	ShouldReply   bool      `json:"should_reply"`
	Confidence    float64   `json:"confidence"`
	MatchedOffers []Offer   `json:"matched_offers"`
	ReplyType     ReplyType `json:"reply_type,omitempty"`
	Reasoning     string    `json:"reasoning"`
}

// ReplyLookup answers whether an author already replied to a comment.
type ReplyLookup interface {
	HasReplyFrom(ctx context.Context, parentID int64, author string) (bool, error)
}

// Engine applies the keyword rules. It builds comment records; callers persist them.
type Engine struct {
	replies ReplyLookup
	src     *generator.Source
	offers  []Offer
}

// NewEngine creates an Engine with the default offer catalogue.
func NewEngine(replies ReplyLookup, src *generator.Source) *Engine {
	return &Engine{
		replies: replies,
		src:     src,
		offers:  DefaultOffers,
	}
}

// Offers returns the offer catalogue.
func (e *Engine) Offers() []Offer {
	return e.offers
}

// Analyze decides whether the channel should answer comment on video.
func (e *Engine) Analyze(ctx context.Context, comment *models.Comment, video *models.Video) (*Analysis, error) {
	if comment.IsAIGenerated {
		return skipped(ReasonAIGenerated), nil
	}

	replied, err := e.replies.HasReplyFrom(ctx, comment.ID, video.ChannelName)
	if err != nil {
		return nil, fmt.Errorf("check channel reply: %w", err)
	}
	if replied {
		return skipped(ReasonAlreadyReplied), nil
	}

	return Score(comment.Content, e.offers), nil
}

func skipped(reason string) *Analysis {
	return &Analysis{MatchedOffers: []Offer{}, Reasoning: reason}
}

// Score applies the keyword rules to content. It has no side effects.
func Score(content string, offers []Offer) *Analysis {
	text := strings.ToLower(content)

	hasPositive := containsAny(text, positiveWords)
	hasQuestion := containsAny(text, questionWords)
	isFirst := strings.Contains(text, "first")

	matched := []Offer{}
	for _, offer := range offers {
		if containsAny(text, offer.Keywords) {
			matched = append(matched, offer)
		}
	}

	score := 0
	if hasPositive {
		score += positiveScore
	}
	if hasQuestion {
		score += questionScore
	}
	if isFirst {
		score += firstScore
	}
	if len(matched) > 0 {
		score += offerScore
	}

	replyType := ReplyGeneral
	switch {
	case isFirst:
		replyType = ReplyFirstComment
	case hasQuestion:
		replyType = ReplyQuestion
	case hasPositive:
		replyType = ReplyPositive
	}

	return &Analysis{
		ShouldReply:   score >= replyThreshold,
		Confidence:    float64(min(score, maxScore)) / maxScore,
		MatchedOffers: matched,
		ReplyType:     replyType,
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ReplyText picks the reply for a comment. The template is chosen by
// commentID mod the family size, so a comment always gets the same text.
func ReplyText(commentID int64, analysis *Analysis) string {
	templates, ok := replyTemplates[analysis.ReplyType]
	if !ok {
		templates = replyTemplates[ReplyGeneral]
	}

	idx := commentID % int64(len(templates))
	if idx < 0 {
		idx += int64(len(templates))
	}
	text := templates[idx]

	if len(analysis.MatchedOffers) > 0 {
		offer := analysis.MatchedOffers[0]
		text += fmt.Sprintf(" You might like my %s: %s", offer.Name, offer.Pitch)
	}
	return text
}

// Reply builds the channel's answer to comment.
func (e *Engine) Reply(comment *models.Comment, video *models.Video, analysis *Analysis) *models.Comment {
	reply := models.NewAIComment(video.ID, video.ChannelName, ReplyText(comment.ID, analysis), ModelBusinessReply)
	reply.ReplyTo(comment)
	if video.ChannelAvatar != "" {
		reply.AuthorAvatar = video.ChannelAvatar
	}
	reply.LikeCount = int64(e.src.IntRange(0, 5))
	return reply
}

// Promotion builds a top-level channel comment advertising an offer. An empty
// offerKey picks one at random.
func (e *Engine) Promotion(video *models.Video, offerKey string) (*models.Comment, error) {
	offer, err := e.pickOffer(offerKey)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf(promoTemplates[e.src.IntN(len(promoTemplates))], offer.Name, offer.Pitch)

	promo := models.NewAIComment(video.ID, video.ChannelName, content, ModelChannelPromo)
	if video.ChannelAvatar != "" {
		promo.AuthorAvatar = video.ChannelAvatar
	}
	promo.LikeCount = int64(e.src.IntRange(5, 15))
	return promo, nil
}

func (e *Engine) pickOffer(key string) (Offer, error) {
	if key == "" {
		return e.offers[e.src.IntN(len(e.offers))], nil
	}
	for _, o := range e.offers {
		if strings.EqualFold(o.Key, key) || strings.EqualFold(o.Name, key) {
			return o, nil
		}
	}
	return Offer{}, fmt.Errorf("%w: %s", ErrUnknownOffer, key)
}

// UserComment builds a simulated viewer comment. It is not flagged as AI so
// that the reply rules treat it like a real viewer's.
func (e *Engine) UserComment(video *models.Video) *models.Comment {
	comment := models.NewComment(video.ID, e.src.Name(), e.src.Pick(userCommentTemplates))
	model := ModelUserSimulation
	comment.AIModelUsed = &model
	comment.LikeCount = int64(e.src.IntRange(0, 10))
	return comment
}
