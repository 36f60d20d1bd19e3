package mem

import (
	"context"
	"errors"
	"testing"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
)

func TestInTxCommits(t *testing.T) {
	m := New()
	ctx := context.Background()

	err := m.InTx(ctx, func(ctx context.Context, s repo.Store) error {
		_, err := s.Tasks().Create(ctx, dom.Task{Title: "t", Status: dom.StatusTodo, Priority: dom.PriorityMedium})
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := m.Tasks().GetByID(ctx, 1); err != nil {
		t.Errorf("task not committed: %v", err)
	}
}

func TestInTxRestoresOnError(t *testing.T) {
	m := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.InTx(ctx, func(ctx context.Context, s repo.Store) error {
		if _, err := s.Tasks().Create(ctx, dom.Task{Title: "t", Status: dom.StatusTodo, Priority: dom.PriorityMedium}); err != nil {
			return err
		}
		if _, err := s.Tags().Create(ctx, "x", ""); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := m.Tasks().GetByID(ctx, 1); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("task survived rollback: %v", err)
	}
	if _, err := m.Tags().GetByID(ctx, 1); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("tag survived rollback: %v", err)
	}
}

func TestInTxRestoresOnCancellation(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())

	err := m.InTx(ctx, func(ctx context.Context, s repo.Store) error {
		if _, err := s.Tasks().Create(ctx, dom.Task{Title: "t", Status: dom.StatusTodo, Priority: dom.PriorityMedium}); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := m.Tasks().GetByID(context.Background(), 1); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("task survived cancelled tx: %v", err)
	}
}

func TestInTxNestedReusesTransaction(t *testing.T) {
	m := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.InTx(ctx, func(ctx context.Context, s repo.Store) error {
		if _, err := s.Tasks().Create(ctx, dom.Task{Title: "outer", Status: dom.StatusTodo, Priority: dom.PriorityMedium}); err != nil {
			return err
		}
		// The inner call must not commit independently of the outer one.
		return s.InTx(ctx, func(ctx context.Context, s repo.Store) error {
			if _, err := s.Tasks().Create(ctx, dom.Task{Title: "inner", Status: dom.StatusTodo, Priority: dom.PriorityMedium}); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := m.Tasks().GetByID(ctx, 1); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("outer write survived: %v", err)
	}
}
