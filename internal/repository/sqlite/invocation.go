package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/model"
	"github.com/sakif/sandbox-tools/internal/repository"
)

var _ repository.InvocationRepository = (*DB)(nil)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const invocationColumns = `id, tool, input, output, error, success, caller, duration_ms, created_at`

// Create inserts inv, assigning its ID and, when unset, its CreatedAt.
func (db *DB) Create(ctx context.Context, inv *model.Invocation) error {
	inv.ID = xid.New().String()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO invocations (`+invocationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.Tool,
		inv.Input,
		inv.Output,
		inv.Error,
		inv.Success,
		inv.Caller,
		inv.Duration.Milliseconds(),
		inv.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating invocation: %w", err)
	}

	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Invocation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+invocationColumns+` FROM invocations WHERE id = ?`,
		id,
	)

	inv, err := scanInvocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("invocation", id)
		}
		return nil, fmt.Errorf("sqlite: getting invocation %s: %w", id, err)
	}

	return inv, nil
}

// List returns invocations newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Invocation, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		where []string
		args  []any
	)
	if opts.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, opts.Tool)
	}

	query := `SELECT ` + invocationColumns + ` FROM invocations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing invocations: %w", err)
	}
	defer rows.Close()

	invocations := make([]model.Invocation, 0, limit)
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning invocation row: %w", err)
		}
		invocations = append(invocations, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating invocations: %w", err)
	}

	return invocations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(s scanner) (*model.Invocation, error) {
	var (
		inv        model.Invocation
		durationMS int64
	)
	if err := s.Scan(
		&inv.ID,
		&inv.Tool,
		&inv.Input,
		&inv.Output,
		&inv.Error,
		&inv.Success,
		&inv.Caller,
		&durationMS,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Duration = time.Duration(durationMS) * time.Millisecond
	return &inv, nil
}
