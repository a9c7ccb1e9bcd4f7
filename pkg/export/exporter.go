package export

import (
	"context"
	"time"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/ratelimit"
)

// Client is the slice of the Bilibili API the exporter needs
type Client interface {
	Followings(ctx context.Context, vmid int64, page int) (*bilibili.FollowingsPage, error)
}

// Exporter walks the paginated followings list and accumulates every
// record. Retrieval is best effort: a failing page truncates the walk
// and whatever was accumulated so far is kept.
type Exporter struct {
	client Client
	pacer  ratelimit.Limiter
	logger logger.Logger
}

// New creates an Exporter that pauses pageInterval between pages
func New(client Client, pageInterval time.Duration, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{
		client: client,
		pacer:  ratelimit.NewInterval(pageInterval),
		logger: log,
	}
}

// FetchAll retrieves the complete followings list for uid, page by
// page, starting at page 1. It stops on an empty page, when the
// accumulated count reaches the server-reported total, or on the first
// page error. The returned slice is valid even when err is non-nil.
func (e *Exporter) FetchAll(ctx context.Context, uid int64) ([]bilibili.Following, error) {
	var all []bilibili.Following

	for page := 1; ; page++ {
		if err := e.pacer.Wait(ctx); err != nil {
			return all, err
		}

		res, err := e.client.Followings(ctx, uid, page)
		if err != nil {
			e.logger.WarnWithFields("stopping pagination early", map[string]interface{}{
				"page":        page,
				"accumulated": len(all),
				"error":       err.Error(),
			})
			return all, nil
		}

		if len(res.List) == 0 {
			break
		}

		all = append(all, res.List...)
		e.logger.InfoWithFields("fetched followings page", map[string]interface{}{
			"page":  page,
			"count": len(res.List),
			"total": res.Total,
		})

		// A zero total means the server did not report one; only an
		// empty page ends the walk then
		if res.Total > 0 && len(all) >= res.Total {
			break
		}
	}

	return all, nil
}
