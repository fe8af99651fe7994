// Package lobby lists waiting rooms and runs the create and join flows.
package lobby

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/suidrift/suidrift/internal/pkg/backend"
	"github.com/suidrift/suidrift/internal/pkg/chain"
	"github.com/suidrift/suidrift/internal/pkg/config"
	"github.com/suidrift/suidrift/internal/pkg/mist"
	"github.com/suidrift/suidrift/internal/pkg/poller"
	"github.com/suidrift/suidrift/internal/pkg/txflow"
	"github.com/suidrift/suidrift/internal/pkg/txresult"
)

const roomPollInterval = 5 * time.Second

type LobbyService struct {
	BackendService *backend.BackendService
	Contract       *config.ContractConfig
	Wallet         chain.Wallet
}

func NewLobbyService(i do.Injector) (*LobbyService, error) {
	backendService := do.MustInvoke[*backend.BackendService](i)
	contract := do.MustInvoke[*config.ContractConfig](i)
	wallet := do.MustInvoke[chain.Wallet](i)

	return &LobbyService{
		BackendService: backendService,
		Contract:       contract,
		Wallet:         wallet,
	}, nil
}

func (s *LobbyService) Rooms(ctx context.Context) ([]backend.Room, error) {
	//nolint:wrapcheck
	return s.BackendService.ListRooms(ctx)
}

// WatchRooms refreshes the room list on a fixed interval for as long as ctx
// lives. Each delivery is a full replacement, never a merge.
func (s *LobbyService) WatchRooms(ctx context.Context, apply func([]backend.Room)) *poller.Poller {
	return poller.Start(ctx, roomPollInterval, func(ctx context.Context) error {
		rooms, err := s.BackendService.ListRooms(ctx)
		if err != nil {
			// Transient fetch trouble keeps the previous list on screen.
			return nil
		}

		apply(rooms)

		return nil
	})
}

// CreateGame stakes the given SUI amount into a new on-chain game and
// registers the room. Returns the new game id; on a DesyncError the id is
// still valid and the game exists on chain.
func (s *LobbyService) CreateGame(ctx context.Context, stakeInput string) (string, error) {
	if s.Wallet == nil {
		return "", txflow.ErrNoWallet
	}

	stake, err := mist.ParseStake(stakeInput)
	if err != nil {
		return "", fmt.Errorf("failed to validate stake: %w", err)
	}

	tx := chain.NewTransaction()
	coin := tx.SplitGas(stake)
	tx.MoveCall(s.Contract.Target("create_game"), coin)

	block, err := txflow.Execute(ctx, s.Wallet, tx)
	if err != nil {
		return "", err
	}

	gameID := txresult.ExtractCreatedID(block,
		s.Contract.EventType("GameCreated"),
		s.Contract.ObjectType("Game"))
	if len(gameID) == 0 {
		return "", txflow.ErrUnresolvedCreation
	}

	err = txflow.Mirror(func() error {
		//nolint:wrapcheck
		return s.BackendService.CreateRoom(ctx, backend.CreateRoomRequest{
			GameID:          gameID,
			PlayerA:         s.Wallet.Address(),
			StakeAmountMist: stake.String(),
		})
	})

	return gameID, err
}

// JoinGame matches the room's stake and joins its game, then mirrors the
// join to the backend.
func (s *LobbyService) JoinGame(ctx context.Context, room backend.Room) error {
	if s.Wallet == nil {
		return txflow.ErrNoWallet
	}

	stake, err := mist.ParseAmount(room.StakeAmountMist)
	if err != nil {
		return fmt.Errorf("failed to validate room stake: %w", err)
	}

	tx := chain.NewTransaction()
	coin := tx.SplitGas(stake)
	tx.MoveCall(s.Contract.Target("join_game"),
		chain.Object(room.GameID),
		coin,
		chain.Object(s.Contract.ClockObjectID),
	)

	_, err = txflow.Execute(ctx, s.Wallet, tx)
	if err != nil {
		return err
	}

	return txflow.Mirror(func() error {
		//nolint:wrapcheck
		return s.BackendService.JoinRoom(ctx, backend.JoinRoomRequest{
			GameID:  room.GameID,
			PlayerB: s.Wallet.Address(),
		})
	})
}
