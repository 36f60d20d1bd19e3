package service

import (
	"context"
	"fmt"
	"sort"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
)

// applyTagDelta reconciles a task's tag associations from prev to next
// inside the caller's transaction. Association writes and usage-count
// moves are paired: each removed tag loses one association row and one
// count, each added tag gains both. When countUsage is false (the task is
// archived) only the rows move; archived tasks are excluded from usage
// accounting.
//
// Unknown ids in next fail the whole transaction with ErrNotFound rather
// than silently skipping, so dangling associations cannot appear.
// prev == next is a no-op.
func applyTagDelta(ctx context.Context, st repo.Store, taskID int64, prev, next []int64, countUsage bool) error {
	added, removed := diffIDSets(prev, next)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	if len(added) > 0 {
		existing, err := st.Tags().ExistingIDs(ctx, added)
		if err != nil {
			return err
		}
		for _, id := range added {
			if !existing[id] {
				return fmt.Errorf("%w: tag %d", dom.ErrNotFound, id)
			}
		}
	}
	if err := st.Tags().Detach(ctx, taskID, removed, countUsage); err != nil {
		return err
	}
	return st.Tags().Attach(ctx, taskID, added, countUsage)
}

// diffIDSets returns next−prev and prev−next with duplicates collapsed.
func diffIDSets(prev, next []int64) (added, removed []int64) {
	prevSet := make(map[int64]bool, len(prev))
	for _, id := range prev {
		prevSet[id] = true
	}
	nextSet := make(map[int64]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
	}
	for id := range nextSet {
		if !prevSet[id] {
			added = append(added, id)
		}
	}
	for id := range prevSet {
		if !nextSet[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

// normalizeIDs sorts and dedups a tag id list.
func normalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !set[id] {
			set[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
