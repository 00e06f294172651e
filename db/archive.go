package db

import (
	"context"
	"errors"

	"goLangClient/state"
)

// Archive records finished rounds in whichever backends are up: the full
// round in PostgreSQL and a summary in Redis.
type Archive struct{}

func (Archive) RecordRound(ctx context.Context, round state.RoundRecord) error {
	var errs []error

	if PostgresPool != nil {
		if err := StoreRound(ctx, round); err != nil {
			errs = append(errs, err)
		}
	}
	if RedisClient != nil {
		if err := CacheRoundSummary(ctx, Summarize(round)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
