package generator

import "github.com/ad-tracker/video-engagement-sim/internal/db/models"

// ScarcityWeights weights each video by how few approved comments it has
// relative to the busiest one: max - count + 1. Every weight is at least 1.
func ScarcityWeights(videos []*models.Video) []int {
	var maxCount int64
	for _, v := range videos {
		if v.CommentCount > maxCount {
			maxCount = v.CommentCount
		}
	}

	weights := make([]int, len(videos))
	for i, v := range videos {
		weights[i] = int(maxCount-v.CommentCount) + 1
	}
	return weights
}

// PickWeighted draws one video, favouring those with fewer comments.
func PickWeighted(src *Source, videos []*models.Video) (*models.Video, error) {
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	return videos[src.WeightedIndex(ScarcityWeights(videos))], nil
}
