package server

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTaskStore_EnqueueAndRun(t *testing.T) {
	store := NewTaskStore(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 1)
	store.RunWorkers(ctx, 1, func(_ context.Context, input string) (string, error) {
		done <- input
		return "echo: " + input, nil
	})

	info, err := store.Enqueue(ctx, "hello", time.Minute)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not pick up the task")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, ok := store.Get(info.ID)
		if !ok {
			t.Fatal("task disappeared")
		}
		if got.Status == TaskDone {
			if got.Result != "echo: hello" {
				t.Fatalf("got result %q", got.Result)
			}
			if got.StartedAt == nil || got.FinishedAt == nil {
				t.Fatal("expected timestamps to be set")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("task never finished, status=%s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTaskStore_FailedTask(t *testing.T) {
	store := NewTaskStore(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.RunWorkers(ctx, 1, func(_ context.Context, input string) (string, error) {
		return "", fmt.Errorf("boom")
	})

	info, err := store.Enqueue(ctx, "hello", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := store.Get(info.ID)
		if got != nil && got.Status == TaskFailed {
			if got.Error != "boom" {
				t.Fatalf("got error %q", got.Error)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("task never failed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTaskStore_QueueFull(t *testing.T) {
	store := NewTaskStore(1)
	ctx := context.Background()

	if _, err := store.Enqueue(ctx, "first", time.Minute); err != nil {
		t.Fatal(err)
	}
	_, err := store.Enqueue(ctx, "second", time.Minute)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestTaskStore_GetUnknown(t *testing.T) {
	store := NewTaskStore(1)
	if _, ok := store.Get("nope"); ok {
		t.Fatal("expected miss")
	}
}
