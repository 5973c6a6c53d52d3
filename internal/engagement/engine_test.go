package engagement

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
)

type mockReplyLookup struct {
	mock.Mock
}

func (m *mockReplyLookup) HasReplyFrom(ctx context.Context, parentID int64, author string) (bool, error) {
	args := m.Called(ctx, parentID, author)
	return args.Bool(0), args.Error(1)
}

func testVideo() *models.Video {
	v := models.NewVideo("Go Concurrency Explained", "CodeWithAlex", 600)
	v.ID = 7
	return v
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantReply  bool
		wantConf   float64
		wantType   ReplyType
		wantOffers []string
	}{
		{
			name:      "positive question",
			content:   "This is really helpful, thanks! Can you do more tutorials like this?",
			wantReply: true,
			wantConf:  0.7,
			wantType:  ReplyQuestion,
		},
		{
			name:      "first comment",
			content:   "First!",
			wantReply: true,
			wantConf:  0.5,
			wantType:  ReplyFirstComment,
		},
		{
			name:      "no signals",
			content:   "ok",
			wantReply: false,
			wantConf:  0,
			wantType:  ReplyGeneral,
		},
		{
			name:       "positive with offer keyword",
			content:    "I love coding",
			wantReply:  true,
			wantConf:   0.6,
			wantType:   ReplyPositive,
			wantOffers: []string{"TechMaster Course"},
		},
		{
			name:       "score is capped",
			content:    "First! Great stuff, how do I grow my programming business?",
			wantReply:  true,
			wantConf:   1.0,
			wantType:   ReplyFirstComment,
			wantOffers: []string{"TechMaster Course", "Marketing Guide"},
		},
		{
			name:      "case insensitive",
			content:   "AMAZING",
			wantReply: true,
			wantConf:  0.3,
			wantType:  ReplyPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.content, DefaultOffers)

			assert.Equal(t, tt.wantReply, got.ShouldReply)
			assert.Equal(t, tt.wantConf, got.Confidence)
			assert.Equal(t, tt.wantType, got.ReplyType)

			names := make([]string, 0, len(got.MatchedOffers))
			for _, o := range got.MatchedOffers {
				names = append(names, o.Name)
			}
			if tt.wantOffers == nil {
				assert.Empty(t, names)
			} else {
				assert.Equal(t, tt.wantOffers, names)
			}
		})
	}
}

func TestEngine_Analyze_SkipsAIComments(t *testing.T) {
	lookup := new(mockReplyLookup)
	engine := NewEngine(lookup, generator.NewSource(1))

	comment := models.NewAIComment(7, "Bot", "Great video!", ModelChannelPromo)
	comment.ID = 3

	got, err := engine.Analyze(context.Background(), comment, testVideo())
	require.NoError(t, err)

	assert.False(t, got.ShouldReply)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, ReasonAIGenerated, got.Reasoning)
	lookup.AssertNotCalled(t, "HasReplyFrom", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Analyze_SkipsAlreadyReplied(t *testing.T) {
	lookup := new(mockReplyLookup)
	video := testVideo()
	lookup.On("HasReplyFrom", mock.Anything, int64(3), video.ChannelName).Return(true, nil)

	engine := NewEngine(lookup, generator.NewSource(1))
	comment := models.NewComment(video.ID, "viewer", "First! Great video")
	comment.ID = 3

	got, err := engine.Analyze(context.Background(), comment, video)
	require.NoError(t, err)

	assert.False(t, got.ShouldReply)
	assert.Equal(t, ReasonAlreadyReplied, got.Reasoning)
	lookup.AssertExpectations(t)
}

func TestEngine_Analyze_Scores(t *testing.T) {
	lookup := new(mockReplyLookup)
	video := testVideo()
	lookup.On("HasReplyFrom", mock.Anything, int64(4), video.ChannelName).Return(false, nil)

	engine := NewEngine(lookup, generator.NewSource(1))
	comment := models.NewComment(video.ID, "viewer", "This is really helpful, thanks! Can you do more tutorials like this?")
	comment.ID = 4

	got, err := engine.Analyze(context.Background(), comment, video)
	require.NoError(t, err)

	assert.True(t, got.ShouldReply)
	assert.Equal(t, 0.7, got.Confidence)
	assert.Equal(t, ReplyQuestion, got.ReplyType)
}

func TestEngine_Analyze_IsRepeatable(t *testing.T) {
	lookup := new(mockReplyLookup)
	video := testVideo()
	lookup.On("HasReplyFrom", mock.Anything, int64(5), video.ChannelName).Return(false, nil).Twice()

	engine := NewEngine(lookup, generator.NewSource(1))
	comment := models.NewComment(video.ID, "viewer", "First! I love learning about marketing, how do you grow?")
	comment.ID = 5

	first, err := engine.Analyze(context.Background(), comment, video)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), comment, video)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.MatchedOffers, 2)
	lookup.AssertExpectations(t)
}

func TestEngine_Analyze_LookupError(t *testing.T) {
	lookup := new(mockReplyLookup)
	lookup.On("HasReplyFrom", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	engine := NewEngine(lookup, generator.NewSource(1))
	comment := models.NewComment(7, "viewer", "Great")
	comment.ID = 1

	_, err := engine.Analyze(context.Background(), comment, testVideo())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestReplyText(t *testing.T) {
	analysis := &Analysis{ReplyType: ReplyPositive, MatchedOffers: []Offer{}}

	assert.Equal(t, "Thank you! Comments like yours motivate me to keep creating.", ReplyText(10, analysis))
	assert.Equal(t, "Really appreciate the kind words!", ReplyText(11, analysis))
	assert.Equal(t, ReplyText(10, analysis), ReplyText(10, analysis))
}

func TestReplyText_AppendsFirstOffer(t *testing.T) {
	analysis := Score("I love coding and marketing", DefaultOffers)
	require.Len(t, analysis.MatchedOffers, 2)

	got := ReplyText(2, analysis)

	assert.True(t, strings.HasPrefix(got, "Thank you! Comments like yours"))
	assert.True(t, strings.HasSuffix(got,
		" You might like my TechMaster Course: Online programming course. $99 (50% off). Link: techcourse.com/discount"))
}

func TestEngine_Reply(t *testing.T) {
	engine := NewEngine(new(mockReplyLookup), generator.NewSource(5))
	video := testVideo()
	video.ChannelAvatar = "https://example.com/alex.png"

	parent := models.NewComment(video.ID, "viewer", "First!")
	parent.ID = 12

	reply := engine.Reply(parent, video, Score(parent.Content, DefaultOffers))

	require.NotNil(t, reply.ParentID)
	assert.Equal(t, int64(12), *reply.ParentID)
	assert.Equal(t, video.ID, reply.VideoID)
	assert.Equal(t, video.ChannelName, reply.AuthorName)
	assert.Equal(t, video.ChannelAvatar, reply.AuthorAvatar)
	assert.True(t, reply.IsAIGenerated)
	require.NotNil(t, reply.AIModelUsed)
	assert.Equal(t, ModelBusinessReply, *reply.AIModelUsed)
	assert.Equal(t, "Thanks for being first! I appreciate early viewers.", reply.Content)
	assert.GreaterOrEqual(t, reply.LikeCount, int64(0))
	assert.LessOrEqual(t, reply.LikeCount, int64(5))
}

func TestEngine_Promotion(t *testing.T) {
	engine := NewEngine(new(mockReplyLookup), generator.NewSource(9))
	video := testVideo()

	promo, err := engine.Promotion(video, "marketing")
	require.NoError(t, err)

	assert.Nil(t, promo.ParentID)
	assert.Equal(t, video.ChannelName, promo.AuthorName)
	assert.True(t, promo.IsAIGenerated)
	assert.Equal(t, ModelChannelPromo, *promo.AIModelUsed)
	assert.Contains(t, promo.Content, "Marketing Guide")
	assert.Contains(t, promo.Content, "marketing-guide.com/buy")
	assert.GreaterOrEqual(t, promo.LikeCount, int64(5))
	assert.LessOrEqual(t, promo.LikeCount, int64(15))
}

func TestEngine_Promotion_RandomOffer(t *testing.T) {
	engine := NewEngine(new(mockReplyLookup), generator.NewSource(9))

	promo, err := engine.Promotion(testVideo(), "")
	require.NoError(t, err)

	assert.True(t,
		strings.Contains(promo.Content, "TechMaster Course") || strings.Contains(promo.Content, "Marketing Guide"))
}

func TestEngine_Promotion_UnknownOffer(t *testing.T) {
	engine := NewEngine(new(mockReplyLookup), generator.NewSource(9))

	_, err := engine.Promotion(testVideo(), "crypto")
	assert.ErrorIs(t, err, ErrUnknownOffer)
}

func TestEngine_UserComment(t *testing.T) {
	engine := NewEngine(new(mockReplyLookup), generator.NewSource(3))
	video := testVideo()

	c := engine.UserComment(video)

	assert.Equal(t, video.ID, c.VideoID)
	assert.False(t, c.IsAIGenerated)
	assert.True(t, c.IsApproved)
	assert.NotEmpty(t, c.AuthorName)
	assert.Contains(t, userCommentTemplates, c.Content)
	require.NotNil(t, c.AIModelUsed)
	assert.Equal(t, ModelUserSimulation, *c.AIModelUsed)
	assert.LessOrEqual(t, c.LikeCount, int64(10))
}
