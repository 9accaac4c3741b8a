package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/model"
	"github.com/sakif/sandbox-tools/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestInvocation(t *testing.T, db *DB, toolName, input string, createdAt time.Time) *model.Invocation {
	t.Helper()
	inv := &model.Invocation{
		Tool:      toolName,
		Input:     input,
		Output:    "ok\n",
		Success:   true,
		Duration:  1500 * time.Millisecond,
		CreatedAt: createdAt,
	}
	if err := db.Create(context.Background(), inv); err != nil {
		t.Fatalf("failed to create test invocation: %v", err)
	}
	return inv
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)

	inv := &model.Invocation{
		Tool:    "python",
		Input:   "print(1/0)",
		Error:   "ZeroDivisionError: division by zero",
		Success: false,
		Caller:  "agent-1",
	}

	if err := db.Create(context.Background(), inv); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if inv.ID == "" {
		t.Error("Create() did not set ID")
	}
	if inv.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestInvocation(t, db, "bash", "echo ok", time.Now())

	got, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Tool != "bash" {
		t.Errorf("Tool = %q, want %q", got.Tool, "bash")
	}
	if got.Input != "echo ok" {
		t.Errorf("Input = %q, want %q", got.Input, "echo ok")
	}
	if got.Output != "ok\n" {
		t.Errorf("Output = %q, want %q", got.Output, "ok\n")
	}
	if !got.Success {
		t.Error("Success = false, want true")
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want %v", got.Duration, 1500*time.Millisecond)
	}
	if got.CreatedAt.Sub(created.CreatedAt).Abs() > time.Second {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().Add(-time.Hour)

	createTestInvocation(t, db, "bash", "first", base)
	createTestInvocation(t, db, "python", "second", base.Add(time.Minute))
	createTestInvocation(t, db, "bash", "third", base.Add(2*time.Minute))

	tests := []struct {
		name       string
		opts       repository.ListOptions
		wantInputs []string
	}{
		{
			name:       "all newest first",
			opts:       repository.ListOptions{},
			wantInputs: []string{"third", "second", "first"},
		},
		{
			name:       "filter by tool",
			opts:       repository.ListOptions{Tool: "bash"},
			wantInputs: []string{"third", "first"},
		},
		{
			name:       "limit",
			opts:       repository.ListOptions{Limit: 1},
			wantInputs: []string{"third"},
		},
		{
			name:       "offset",
			opts:       repository.ListOptions{Limit: 2, Offset: 1},
			wantInputs: []string{"second", "first"},
		},
		{
			name:       "offset past end",
			opts:       repository.ListOptions{Offset: 10},
			wantInputs: []string{},
		},
		{
			name:       "unknown tool",
			opts:       repository.ListOptions{Tool: "ruby"},
			wantInputs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.wantInputs) {
				t.Fatalf("List() returned %d invocations, want %d", len(got), len(tt.wantInputs))
			}
			for i, want := range tt.wantInputs {
				if got[i].Input != want {
					t.Errorf("List()[%d].Input = %q, want %q", i, got[i].Input, want)
				}
			}
		})
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	createTestInvocation(t, db, "bash", "persisted", time.Now())
	db.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].Input != "persisted" {
		t.Errorf("List() after reopen = %+v, want one persisted invocation", got)
	}
}
