package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"post-radar/domain/model"
	"post-radar/domain/repository"
)

// ErrInvalidPost is returned when the input collection contains a post with
// missing identity fields.
var ErrInvalidPost = errors.New("thread: invalid post")

type IThreadUsecase interface {
	List(ctx context.Context, memberID string, limit int) ([]model.Thread, error)
}

type threadUsecase struct {
	postRepo repository.IPost
}

func NewThreadUsecase(postRepo repository.IPost) IThreadUsecase {
	return &threadUsecase{postRepo: postRepo}
}

func (u *threadUsecase) List(ctx context.Context, memberID string, limit int) ([]model.Thread, error) {
	posts, err := u.postRepo.ListByMember(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}
	return BuildThreads(posts)
}

// BuildThreads merges a flat post collection into ordered conversation
// threads, newest root first. A post is linked to its parent only when the
// parent is present in the same collection and authored by the same
// username; otherwise it becomes an independent root even if it is
// technically a reply to someone else's post.
//
// Replies are collected with a stack walk: direct children are pushed in
// ascending creation order and the most recently discovered node is taken
// next, its own children going ahead of still-pending siblings. A single
// linear self-reply chain (the common case) therefore comes out in exact
// chronological order. Branching self-reply trees are linearized depth-first
// and sibling branches may interleave out of chronological order.
func BuildThreads(posts []model.Post) ([]model.Thread, error) {
	byID := make(map[string]*model.Post, len(posts))
	for i := range posts {
		p := &posts[i]
		if p.ID == "" || p.AuthorUsername == "" || p.CreatedAt.IsZero() {
			return nil, fmt.Errorf("%w: id=%q author=%q", ErrInvalidPost, p.ID, p.AuthorUsername)
		}
		byID[p.ID] = p
	}

	// Parent edges exist only for same-author replies whose parent is in
	// the collection.
	children := make(map[string][]*model.Post)
	hasParent := make(map[string]bool)
	for i := range posts {
		p := &posts[i]
		if p.ReplyToID == nil {
			continue
		}
		parent, ok := byID[*p.ReplyToID]
		if !ok || parent.AuthorUsername != p.AuthorUsername {
			continue
		}
		children[parent.ID] = append(children[parent.ID], p)
		hasParent[p.ID] = true
	}
	for id := range children {
		kids := children[id]
		sort.SliceStable(kids, func(a, b int) bool {
			return kids[a].CreatedAt.Before(kids[b].CreatedAt)
		})
	}

	var roots []*model.Post
	for i := range posts {
		if !hasParent[posts[i].ID] {
			roots = append(roots, &posts[i])
		}
	}
	sort.SliceStable(roots, func(a, b int) bool {
		return roots[a].CreatedAt.After(roots[b].CreatedAt)
	})

	threads := make([]model.Thread, 0, len(roots))
	visited := make(map[string]bool, len(posts))
	for _, root := range roots {
		visited[root.ID] = true
		var replies []model.Post
		stack := append([]*model.Post(nil), children[root.ID]...)
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[node.ID] {
				continue
			}
			visited[node.ID] = true
			replies = append(replies, *node)
			stack = append(stack, children[node.ID]...)
		}

		texts := make([]string, 0, len(replies)+1)
		texts = append(texts, root.Text)
		metrics := root.Metrics
		for i := range replies {
			texts = append(texts, replies[i].Text)
			metrics.Add(replies[i].Metrics)
		}

		threads = append(threads, model.Thread{
			RootID:            root.ID,
			Root:              *root,
			Replies:           replies,
			ReplyCount:        len(replies),
			CombinedText:      strings.Join(texts, model.ThreadSeparator),
			AggregatedMetrics: metrics,
		})
	}
	return threads, nil
}
