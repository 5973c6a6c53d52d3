package repository

import (
	"fmt"
	"strings"
	"time"
)

// Pagination defaults shared by list queries.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// VideoFilters narrows ListVideos.
type VideoFilters struct {
	CategoryID  *int64
	Status      string
	Language    string
	ChannelName string
	Search      string
	Tag         string
	Limit       int
	Offset      int
	OrderBy     string
	OrderDir    string
}

// CommentFilters narrows ListComments.
type CommentFilters struct {
	VideoID       *int64
	ParentID      *int64
	TopLevelOnly  bool
	IsApproved    *bool
	IsAIGenerated *bool
	Since         *time.Time
	Limit         int
	Offset        int
	OrderBy       string
	OrderDir      string
}

// JobRunFilters narrows ListJobRuns.
type JobRunFilters struct {
	Task   string
	Status string
	Limit  int
	Offset int
}

var videoOrderColumns = map[string]string{
	"created_at":    "created_at",
	"published_at":  "published_at",
	"view_count":    "view_count",
	"like_count":    "like_count",
	"comment_count": "comment_count",
	"title":         "title",
	"duration":      "duration",
}

var commentOrderColumns = map[string]string{
	"created_at": "created_at",
	"like_count": "like_count",
}

// whereBuilder accumulates positional predicates.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with all args.
func (w *whereBuilder) page(limit, offset int) (string, []any) {
	limit, offset = normalizePage(limit, offset)
	n := len(w.args)
	args := append(append([]any{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func orderClause(columns map[string]string, orderBy, orderDir, fallback string) string {
	col, ok := columns[orderBy]
	if !ok {
		col = fallback
	}
	dir := "DESC"
	if strings.EqualFold(orderDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}
