package worker

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestExecuteKeepsInputOrder(t *testing.T) {
	pool := NewPool(4, func(ctx context.Context, n int) (string, error) {
		return fmt.Sprintf("r%d", n), nil
	})

	tasks := pool.Execute(context.Background(), []int{3, 1, 2})

	var got []string
	for _, task := range tasks {
		if task.Err != nil {
			t.Fatalf("task %v error = %v", task.Input, task.Err)
		}
		got = append(got, task.Result)
	}
	if want := []string{"r3", "r1", "r2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Execute() results = %v, want %v", got, want)
	}
}

func TestExecuteIsolatesFailures(t *testing.T) {
	broken := errors.New("broken input")
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, broken
		}
		return n * 10, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3})

	if tasks[0].Err != nil || tasks[2].Err != nil {
		t.Errorf("healthy tasks carry errors: %v, %v", tasks[0].Err, tasks[2].Err)
	}
	if !errors.Is(tasks[1].Err, broken) {
		t.Errorf("task 1 error = %v, want %v", tasks[1].Err, broken)
	}
	if tasks[0].Result != 10 || tasks[2].Result != 30 {
		t.Errorf("results = %d, %d, want 10, 30", tasks[0].Result, tasks[2].Result)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	tasks := pool.Execute(ctx, []int{1, 2, 3})

	// The pool returns one task per input even when cancelled before any
	// work started; unprocessed tasks stay zero.
	if len(tasks) != 3 {
		t.Fatalf("Execute() returned %d tasks, want 3", len(tasks))
	}
}

func TestBatch(t *testing.T) {
	got := Batch([]int{1, 2, 3, 4, 5}, 2)
	want := [][]int{{1, 2}, {3, 4}, {5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Batch() = %v, want %v", got, want)
	}

	if got := Batch([]int{1, 2}, 0); len(got) != 2 {
		t.Errorf("Batch(size 0) = %v, want one item per batch", got)
	}
}
