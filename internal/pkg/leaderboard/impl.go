// Package leaderboard reads the externally computed rankings and settlement
// history.
package leaderboard

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/suidrift/suidrift/internal/pkg/backend"
)

const DefaultLimit = 20

type LeaderboardService struct {
	BackendService *backend.BackendService
}

func NewLeaderboardService(i do.Injector) (*LeaderboardService, error) {
	backendService := do.MustInvoke[*backend.BackendService](i)

	return &LeaderboardService{
		BackendService: backendService,
	}, nil
}

// Fetch loads rankings and history concurrently. Either failing fails the
// whole fetch; both are read-only projections with no partial value.
func (s *LeaderboardService) Fetch(ctx context.Context, limit int) (*backend.LeaderboardResponse, *backend.HistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		ranking *backend.LeaderboardResponse
		history *backend.HistoryResponse
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		ranking, err = s.BackendService.GetLeaderboard(groupCtx, limit)

		//nolint:wrapcheck
		return err
	})

	group.Go(func() error {
		var err error
		history, err = s.BackendService.GetHistory(groupCtx, limit)

		//nolint:wrapcheck
		return err
	})

	if err := group.Wait(); err != nil {
		//nolint:wrapcheck
		return nil, nil, err
	}

	return ranking, history, nil
}
