package session

import (
	"context"
	"errors"
	"time"

	perr "supplysync/internal/platform/errors"

	"github.com/redis/go-redis/v9"
)

// OperatorLookup resolves operator session cookies issued by the review UI.
// Sessions live at supplysync:operator:<token> holding the operator id
func OperatorLookup(rdb *redis.Client, timeout time.Duration) func(token string) (string, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(token string) (string, error) {
		if rdb == nil {
			return "", perr.Unauthorizedf("operator sessions unavailable")
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := rdb.Get(ctx, "supplysync:operator:"+token).Result()
		if errors.Is(err, redis.Nil) || id == "" {
			return "", perr.Unauthorizedf("unknown operator session")
		}
		if err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "operator session lookup")
		}
		return "operator:" + id, nil
	}
}
