package cache

import (
	"context"
	"time"
)

// Noop satisfies Cache when no Redis is configured. Reads report a miss,
// writes succeed silently, and IncrWithExpiry always returns 1 so rate
// limiting backed by it never trips.
type Noop struct{}

func (Noop) Ping(context.Context) error { return nil }

func (Noop) SetSessionStatus(context.Context, string, string, time.Duration) error { return nil }

func (Noop) GetSessionStatus(context.Context, string) (string, bool, error) { return "", false, nil }

func (Noop) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) { return 1, nil }

func (Noop) Close() error { return nil }

var _ Cache = Noop{}
