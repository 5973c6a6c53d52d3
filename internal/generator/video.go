package generator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
)

var (
	// ErrNoCategories is returned when there is no active category to generate into.
	ErrNoCategories = errors.New("no active categories found, seed categories first")

	// ErrNoVideos is returned when there is no published video to target.
	ErrNoVideos = errors.New("no published videos found, generate videos first")
)

var titleTemplates = map[string][]string{
	"Technology": {
		"The Future of {tech} in 2024",
		"Why {tech} is Changing Everything",
		"Top 10 {tech} Tips You Need to Know",
		"Complete {tech} Tutorial for Beginners",
		"React vs Vue vs Angular: Ultimate Comparison",
		"Building {tech} Apps in 2024",
		"AI Revolution: How {tech} Works",
	},
	"Gaming": {
		"{game} - Full Gameplay Walkthrough",
		"Top 10 {game} Tips and Tricks",
		"{game} Review: Is It Worth Playing?",
		"Epic {game} Moments Compilation",
		"How to Master {game} in 30 Days",
		"{game} vs {game}: Which is Better?",
	},
	"Education": {
		"Learn {subject} in 10 Minutes",
		"Complete {subject} Course for Beginners",
		"Why {subject} is Important in 2024",
		"{subject} Explained Simply",
		"Master {subject} with These Tips",
	},
	"Entertainment": {
		"Top 10 {movie} Moments",
		"{celebrity} Interview: Shocking Revelations",
		"Behind the Scenes: {movie}",
		"Funniest {show} Compilation",
		"Celebrity News: {celebrity} Updates",
	},
}

var genericTitleTemplates = []string{
	"Amazing {topic} You Need to See",
	"The Ultimate Guide to {topic}",
	"Why {topic} Matters in 2024",
	"Top 10 {topic} Facts",
	"Everything You Need to Know About {topic}",
}

var vocabularies = map[string][]string{
	"{tech}":    {"AI", "Machine Learning", "Python", "React", "JavaScript", "Docker", "Kubernetes"},
	"{game}":    {"Minecraft", "Fortnite", "Call of Duty", "FIFA", "League of Legends", "Valorant"},
	"{subject}": {"Mathematics", "Physics", "Chemistry", "History", "Biology", "English"},
	"{movie}":   {"Marvel", "Star Wars", "Lord of the Rings", "Harry Potter", "DC Comics"},
	"{show}":    {"Friends", "The Office", "Game of Thrones", "Breaking Bad", "Stranger Things"},
	"{topic}":   {"Innovation", "Success", "Productivity", "Health", "Travel", "Cooking"},
}

// placeholderOrder fixes the order placeholders are tried so generation is
// reproducible for a given seed.
var placeholderOrder = []string{"{tech}", "{game}", "{subject}", "{movie}", "{celebrity}", "{show}", "{topic}"}

type durationRange struct{ min, max int }

var durationRanges = map[string]durationRange{
	"Music":      {180, 300},
	"Comedy":     {60, 600},
	"Education":  {600, 3600},
	"Gaming":     {1200, 7200},
	"Technology": {300, 1800},
	"News":       {120, 600},
}

var defaultDuration = durationRange{300, 1800}

var tagSets = map[string][]string{
	"Technology":    {"tech", "programming", "tutorial", "coding", "software", "developer"},
	"Gaming":        {"gaming", "gameplay", "review", "walkthrough", "tips", "strategy"},
	"Education":     {"education", "learning", "tutorial", "guide", "howto", "tips"},
	"Entertainment": {"entertainment", "funny", "comedy", "viral", "trending"},
	"Music":         {"music", "song", "artist", "album", "concert", "performance"},
	"Sports":        {"sports", "fitness", "workout", "training", "athlete", "competition"},
}

var (
	defaultTags = []string{"video", "content", "Youtube"}
	generalTags = []string{"2024", "new", "best", "top", "amazing", "must-watch"}
)

var channelPatterns = map[string][]string{
	"Technology":    {"{name} Tech", "Code with {name}", "{name} Dev", "Tech {name}"},
	"Gaming":        {"{name} Gaming", "Gamer {name}", "{name} Plays", "Gaming with {name}"},
	"Education":     {"{name} Academy", "Learn with {name}", "{name} Explains", "Prof {name}"},
	"Entertainment": {"{name} Entertainment", "Fun with {name}", "{name} Show"},
}

var defaultChannelPatterns = []string{"{name} Channel", "{name} TV", "{name} Videos"}

// Age thresholds past which a video earns extra views.
const (
	matureAgeDays  = 30
	veteranAgeDays = 180
)

// VideoGenerator synthesizes published videos.
type VideoGenerator struct {
	src *Source
	now func() time.Time
}

// NewVideoGenerator creates a VideoGenerator drawing from src.
func NewVideoGenerator(src *Source) *VideoGenerator {
	return &VideoGenerator{src: src, now: time.Now}
}

// Generate builds one published video in a randomly chosen category. The caller persists it.
func (g *VideoGenerator) Generate(categories []*models.Category) (*models.Video, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	category := categories[g.src.IntN(len(categories))]
	title := g.Title(category.Name)

	video := models.NewVideo(title, g.ChannelName(category.Name), g.Duration(category.Name))
	video.Description = g.Description(title, category.Name)
	video.CategoryID = &category.ID
	video.Tags = g.Tags(category.Name)

	daysOld := g.src.IntRange(1, 365)
	video.SetStatus(models.VideoStatusPublished, g.now().Add(-time.Duration(daysOld)*24*time.Hour))

	views, likes, dislikes := g.Counters(daysOld)
	video.ViewCount = views
	video.LikeCount = likes
	video.DislikeCount = dislikes

	return video, nil
}

// Title fills a category title template.
func (g *VideoGenerator) Title(category string) string {
	templates, ok := titleTemplates[category]
	if !ok {
		templates = genericTitleTemplates
	}
	title := g.src.Pick(templates)

	for _, placeholder := range placeholderOrder {
		if !strings.Contains(title, placeholder) {
			continue
		}
		var value string
		if placeholder == "{celebrity}" {
			value = g.src.Name()
		} else {
			value = g.src.Pick(vocabularies[placeholder])
		}
		return strings.ReplaceAll(title, placeholder, value)
	}

	return title
}

// Description picks a description template and appends filler text.
func (g *VideoGenerator) Description(title, category string) string {
	t := strings.ToLower(title)
	c := strings.ToLower(category)
	templates := []string{
		fmt.Sprintf("In this video, we explore %s. Don't forget to like and subscribe!", t),
		fmt.Sprintf("Welcome back to our channel! Today we're diving into %s content.", c),
		fmt.Sprintf("This comprehensive guide covers everything about %s.", t),
		fmt.Sprintf("Join us as we discuss the latest in %s. Hit the notification bell!", c),
		fmt.Sprintf("Thanks for watching! Check out our other %s videos in the playlist.", c),
	}
	return g.src.Pick(templates) + "\n\n" + g.src.Phrase()
}

// Duration returns a length in seconds typical for the category.
func (g *VideoGenerator) Duration(category string) int {
	r, ok := durationRanges[category]
	if !ok {
		r = defaultDuration
	}
	return g.src.IntRange(r.min, r.max)
}

// Tags samples up to four category tags plus two general ones.
func (g *VideoGenerator) Tags(category string) []string {
	base, ok := tagSets[category]
	if !ok {
		base = defaultTags
	}
	tags := g.src.Sample(base, 4)
	return append(tags, g.src.Sample(generalTags, 2)...)
}

// ChannelName fills a category channel-name pattern with a fake first name.
func (g *VideoGenerator) ChannelName(category string) string {
	patterns, ok := channelPatterns[category]
	if !ok {
		patterns = defaultChannelPatterns
	}
	return strings.ReplaceAll(g.src.Pick(patterns), "{name}", g.src.FirstName())
}

// Counters derives plausible view, like and dislike counts from a video's age.
func (g *VideoGenerator) Counters(daysOld int) (views, likes, dislikes int64) {
	base := g.src.IntRange(100, 10000)
	if daysOld > matureAgeDays {
		base += g.src.IntRange(1000, 50000)
	}
	if daysOld > veteranAgeDays {
		base += g.src.IntRange(5000, 100000)
	}

	views = int64(base)
	likes = int64(float64(views) * g.src.Uniform(0.01, 0.1))
	dislikes = int64(float64(likes) * g.src.Uniform(0.05, 0.3))
	return views, likes, dislikes
}
