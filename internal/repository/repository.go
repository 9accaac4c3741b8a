// Package repository declares the storage interfaces the service layer depends on.
package repository

import (
	"context"

	"github.com/sakif/sandbox-tools/internal/model"
)

type ListOptions struct {
	Tool   string // filter by tool name; empty lists all
	Limit  int
	Offset int
}

type InvocationRepository interface {
	Create(ctx context.Context, inv *model.Invocation) error
	GetByID(ctx context.Context, id string) (*model.Invocation, error)
	List(ctx context.Context, opts ListOptions) ([]model.Invocation, error)
}
