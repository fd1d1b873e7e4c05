package live

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const campaignsChannel = "campaigns_changed"

// Listen holds a dedicated connection on the campaigns_changed notification
// channel and invalidates the feed whenever another process writes a
// campaign. The schema's statement trigger fires the notification, so
// writers outside this process still reach subscribers. Reconnects with
// backoff on connection loss; returns when ctx is done.
func (f *Feed) Listen(ctx context.Context, pool *pgxpool.Pool) {
	backoff := time.Second
	for ctx.Err() == nil {
		if err := f.listenOnce(ctx, pool); err != nil && ctx.Err() == nil {
			f.logger.Warn().Err(err).Msg("campaign listener lost, reconnecting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
	}
}

func (f *Feed) listenOnce(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+campaignsChannel); err != nil {
		return err
	}
	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		f.Invalidate()
	}
}
