package generator

import (
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
)

var categoryCommentTemplates = map[string][]string{
	"Technology": {
		"This technology looks promising!",
		"Great tutorial, very clear explanations.",
		"When will this be available for production use?",
		"I've been waiting for something like this.",
		"The documentation could be better, but this is a good start.",
		"Performance looks impressive in the demos.",
	},
	"Gaming": {
		"Epic gameplay! How did you get so good?",
		"What's your setup for recording?",
		"This game looks amazing, definitely trying it.",
		"Your commentary is hilarious!",
		"Can you do a tutorial on that combo?",
		"The graphics in this game are incredible.",
	},
	"Education": {
		"Thank you for this clear explanation!",
		"This helped me understand the concept finally.",
		"Could you make a video about advanced topics?",
		"Perfect timing, I have an exam next week!",
		"Your teaching style is really effective.",
		"Any recommended books on this topic?",
	},
	"Entertainment": {
		"This made my day! So funny!",
		"I can't stop laughing at this part.",
		"Please make more content like this!",
		"Your editing skills are on point.",
		"This deserves way more views.",
		"I've watched this 5 times already.",
	},
	"Music": {
		"This song is stuck in my head now!",
		"Amazing vocals and production quality.",
		"When is the full album coming out?",
		"This gives me chills every time.",
		"The lyrics are so meaningful.",
		"Perfect song for my playlist.",
	},
}

var fallbackCategoryComments = []string{
	"Great content!",
	"Thanks for sharing this.",
	"Really enjoyed watching this.",
	"Keep up the good work!",
	"This was very informative.",
}

var genericComments = []string{
	"Excellent video! Very informative.",
	"Thanks for sharing this content.",
	"I learned something new today.",
	"Great work on this video!",
	"This deserves more views.",
	"Keep creating amazing content!",
	"Very well explained, thank you.",
	"This helped me a lot.",
	"Looking forward to more videos like this.",
	"Subscribed after watching this!",
}

var replyComments = []string{
	"Great point! I totally agree.",
	"Thanks for sharing this perspective.",
	"I had the same experience!",
	"Interesting take on this topic.",
	"Can you elaborate on that?",
	"This helped me understand better.",
	"I disagree, but I respect your opinion.",
	"Thanks for the detailed explanation!",
	"This is exactly what I was looking for.",
	"Have you tried the method mentioned in the video?",
}

var emojis = []string{"👍", "😊", "🔥", "💯", "👌", "🙌", "❤️", "😍"}

const emojiChance = 0.1

// CommentGenerator synthesizes human-looking comments for seeding.
type CommentGenerator struct {
	src *Source
}

// NewCommentGenerator creates a CommentGenerator drawing from src.
func NewCommentGenerator(src *Source) *CommentGenerator {
	return &CommentGenerator{src: src}
}

// Human builds a comment on video. With a parent it is a reply; otherwise the
// text comes from the category's templates, or the generic set when category is empty.
func (g *CommentGenerator) Human(video *models.Video, category string, parent *models.Comment) *models.Comment {
	var content string
	switch {
	case parent != nil:
		content = g.src.Pick(replyComments)
	case category != "":
		templates, ok := categoryCommentTemplates[category]
		if !ok {
			templates = fallbackCategoryComments
		}
		content = g.src.Pick(templates)
	default:
		content = g.src.Pick(genericComments)
	}

	if g.src.Chance(emojiChance) {
		content += " " + g.src.Pick(emojis)
	}

	comment := models.NewComment(video.ID, g.src.Name(), content)
	comment.LikeCount = int64(g.src.IntRange(0, 20))
	if parent != nil {
		comment.ReplyTo(parent)
	}
	return comment
}
