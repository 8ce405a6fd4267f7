package client

import (
	"context"
	"fmt"

	"github.com/pixperk/lockbox/pkg/types"
)

// Lock is a held file lock. It lets a caller bracket its own sequence of
// calls instead of going through a workflow.
type Lock struct {
	client *Client
	name   string
}

// Lock acquires the named file's lock, failing with types.ErrLockConflict when
// another holder has it.
func (c *Client) Lock(ctx context.Context, name string) (*Lock, error) {
	ok, err := c.Acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", name, types.ErrLockConflict)
	}
	return &Lock{client: c, name: name}, nil
}

func (l *Lock) Name() string {
	return l.name
}

func (l *Lock) Release(ctx context.Context) error {
	released, err := l.client.Release(context.WithoutCancel(ctx), l.name)
	if err != nil {
		return err
	}
	if !released {
		return fmt.Errorf("release %s: lock no longer held", l.name)
	}
	return nil
}
