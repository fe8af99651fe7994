// Package match owns one active match on the client: the status polling
// state machine, the advisory countdown, and the settle / cancel / refund
// transaction flows.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
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

func mistAmount(amount string) (*big.Int, error) {
	value, err := mist.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stake amount: %w", err)
	}

	return value, nil
}

const (
	statusPollInterval = 2 * time.Second
	countdownInterval  = 1 * time.Second

	// GuessSeconds is the advisory time budget once a match turns active.
	GuessSeconds = 300
)

var (
	ErrNotActive      = errors.New("game is not active")
	ErrAlreadyGuessed = errors.New("guess already submitted")
	ErrNotSettleable  = errors.New("game has no settlement signature yet")
	ErrWinnerOnly     = errors.New("only the winner can settle")
	ErrNotWaiting     = errors.New("game is not waiting")
	ErrCreatorOnly    = errors.New("only the creator can cancel")
)

type MatchService struct {
	BackendService *backend.BackendService
	Contract       *config.ContractConfig
	Wallet         chain.Wallet

	StatusPollInterval time.Duration
	CountdownInterval  time.Duration
}

func NewMatchService(i do.Injector) (*MatchService, error) {
	backendService := do.MustInvoke[*backend.BackendService](i)
	contract := do.MustInvoke[*config.ContractConfig](i)
	wallet := do.MustInvoke[chain.Wallet](i)

	return &MatchService{
		BackendService: backendService,
		Contract:       contract,
		Wallet:         wallet,

		StatusPollInterval: statusPollInterval,
		CountdownInterval:  countdownInterval,
	}, nil
}

// Session is the live view of one match. Two pollers feed a single event
// channel: the status poll mirrors the backend, the countdown ticks locally.
// Both are torn down together; the channel closes exactly once no further
// event can be produced.
type Session struct {
	service *MatchService
	gameID  string

	events chan Event

	statusPoller    *poller.Poller
	countdownPoller *poller.Poller

	mu          sync.Mutex
	game        *backend.GameState
	secondsLeft int
	guessed     bool
}

// Open starts polling the match. The session ends when a terminal state or a
// 404 arrives, or when ctx ends or Close is called.
func (s *MatchService) Open(ctx context.Context, gameID string) *Session {
	session := &Session{
		service: s,
		gameID:  gameID,

		events: make(chan Event),

		secondsLeft: GuessSeconds,
	}

	statusInterval := s.StatusPollInterval
	if statusInterval <= 0 {
		statusInterval = statusPollInterval
	}

	tickInterval := s.CountdownInterval
	if tickInterval <= 0 {
		tickInterval = countdownInterval
	}

	session.statusPoller = poller.Start(ctx, statusInterval, session.pollStatus)
	session.countdownPoller = poller.Start(ctx, tickInterval, session.tickCountdown)

	go func() {
		_ = session.statusPoller.Wait()
		session.countdownPoller.Cancel()
		_ = session.countdownPoller.Wait()
		close(session.events)
	}()

	return session
}

func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) Close() {
	s.statusPoller.Cancel()
}

// Game returns the last applied backend snapshot, nil before the first poll
// resolves.
func (s *Session) Game() *backend.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.game
}

func (s *Session) SecondsLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.secondsLeft
}

func (s *Session) emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *Session) pollStatus(ctx context.Context) error {
	game, err := s.service.BackendService.GetGame(ctx, s.gameID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			s.emit(ctx, Event{Kind: EventVanished})

			//nolint:wrapcheck
			return poller.Stop
		}

		// Transient backend trouble: keep the last snapshot and poll on.
		return nil
	}

	s.mu.Lock()
	s.game = game
	s.mu.Unlock()

	s.emit(ctx, Event{Kind: EventState, Game: game})

	if game.Status == backend.StatusCancelled || game.Status == backend.StatusRefunded {
		s.emit(ctx, Event{Kind: EventClosed, Game: game})

		//nolint:wrapcheck
		return poller.Stop
	}

	return nil
}

func (s *Session) tickCountdown(ctx context.Context) error {
	s.mu.Lock()

	running := s.game != nil &&
		s.game.Status == backend.StatusActive &&
		!s.guessed &&
		s.secondsLeft > 0
	if running {
		s.secondsLeft--
	}

	left := s.secondsLeft
	s.mu.Unlock()

	if running {
		s.emit(ctx, Event{Kind: EventCountdown, SecondsLeft: left})
	}

	return nil
}

// SubmitGuess records the local player's coordinate with the backend and
// freezes the countdown. No chain transaction is involved.
func (s *Session) SubmitGuess(ctx context.Context, lat float64, lon float64) error {
	if s.service.Wallet == nil {
		return txflow.ErrNoWallet
	}

	s.mu.Lock()
	game := s.game
	guessed := s.guessed
	s.mu.Unlock()

	if game == nil || game.Status != backend.StatusActive {
		return ErrNotActive
	}

	if guessed {
		return ErrAlreadyGuessed
	}

	err := s.service.BackendService.SubmitGuess(ctx, backend.GuessRequest{
		GameID:        s.gameID,
		PlayerAddress: s.service.Wallet.Address(),
		Lat:           lat,
		Lon:           lon,
	})
	if err != nil {
		return fmt.Errorf("failed to submit guess: %w", err)
	}

	s.mu.Lock()
	s.guessed = true
	s.mu.Unlock()

	return nil
}

// SubmitGuess is the sessionless guess path: validate against the current
// backend state and record the coordinate. Active matches only.
func (s *MatchService) SubmitGuess(ctx context.Context, gameID string, lat float64, lon float64) error {
	if s.Wallet == nil {
		return txflow.ErrNoWallet
	}

	game, err := s.BackendService.GetGame(ctx, gameID)
	if err != nil {
		//nolint:wrapcheck
		return err
	}

	if game.Status != backend.StatusActive {
		return ErrNotActive
	}

	if _, mine := game.Guesses[s.Wallet.Address()]; mine {
		return ErrAlreadyGuessed
	}

	//nolint:wrapcheck
	return s.BackendService.SubmitGuess(ctx, backend.GuessRequest{
		GameID:        gameID,
		PlayerAddress: s.Wallet.Address(),
		Lat:           lat,
		Lon:           lon,
	})
}

// settleCall appends the five-argument settlement call. The argument order
// is fixed by the deployed program.
func (s *MatchService) settleCall(tx *chain.Transaction, game *backend.GameState) {
	tx.MoveCall(s.Contract.Target("settle_game"),
		chain.Object(game.ID),
		chain.Object(s.Contract.GameConfigID),
		chain.PureBytes(game.Signature),
		chain.PureBytes(game.WalrusBlobBytes),
		chain.PureAddress(game.Winner),
	)
}

func (s *MatchService) checkSettleable(game *backend.GameState) error {
	if s.Wallet == nil {
		return txflow.ErrNoWallet
	}

	if game.Status != backend.StatusSettled || len(game.Signature) == 0 || len(game.Winner) == 0 {
		return ErrNotSettleable
	}

	if game.Winner != s.Wallet.Address() {
		return ErrWinnerOnly
	}

	return nil
}

// Settle claims the payout with the oracle signature. The backend learns of
// the settlement on its own; there is no mirror write.
func (s *MatchService) Settle(ctx context.Context, game *backend.GameState) error {
	if err := s.checkSettleable(game); err != nil {
		return err
	}

	tx := chain.NewTransaction()
	s.settleCall(tx, game)

	_, err := txflow.Execute(ctx, s.Wallet, tx)

	return err
}

// SettleAndPlayAgain claims the payout and stakes the same amount into a
// fresh game within one transaction, then registers the new room. Returns
// the new game id; a DesyncError still carries a usable id.
func (s *MatchService) SettleAndPlayAgain(ctx context.Context, game *backend.GameState) (string, error) {
	if err := s.checkSettleable(game); err != nil {
		return "", err
	}

	stake, err := mistAmount(game.StakeAmountMist)
	if err != nil {
		return "", err
	}

	tx := chain.NewTransaction()
	s.settleCall(tx, game)
	coin := tx.SplitGas(stake)
	tx.MoveCall(s.Contract.Target("create_game"), coin)

	block, err := txflow.Execute(ctx, s.Wallet, tx)
	if err != nil {
		return "", err
	}

	newGameID := txresult.ExtractCreatedID(block,
		s.Contract.EventType("GameCreated"),
		s.Contract.ObjectType("Game"))
	if len(newGameID) == 0 {
		return "", txflow.ErrUnresolvedCreation
	}

	err = txflow.Mirror(func() error {
		//nolint:wrapcheck
		return s.BackendService.CreateRoom(ctx, backend.CreateRoomRequest{
			GameID:          newGameID,
			PlayerA:         s.Wallet.Address(),
			StakeAmountMist: game.StakeAmountMist,
		})
	})

	return newGameID, err
}

// CancelWaiting withdraws a still-unjoined game and removes its room.
func (s *MatchService) CancelWaiting(ctx context.Context, game *backend.GameState) error {
	if s.Wallet == nil {
		return txflow.ErrNoWallet
	}

	if game.Status != backend.StatusWaiting {
		return ErrNotWaiting
	}

	if game.PlayerA != s.Wallet.Address() {
		return ErrCreatorOnly
	}

	tx := chain.NewTransaction()
	tx.MoveCall(s.Contract.Target("cancel_waiting_game"), chain.Object(game.ID))

	_, err := txflow.Execute(ctx, s.Wallet, tx)
	if err != nil {
		return err
	}

	return txflow.Mirror(func() error {
		//nolint:wrapcheck
		return s.BackendService.CancelRoom(ctx, backend.CancelRoomRequest{
			GameID:        game.ID,
			PlayerAddress: s.Wallet.Address(),
		})
	})
}

// RefundTimeout asks the contract to refund a timed-out active game. The
// clock object makes the contract the sole timeout authority; the local
// countdown has no say.
func (s *MatchService) RefundTimeout(ctx context.Context, gameID string) error {
	if s.Wallet == nil {
		return txflow.ErrNoWallet
	}

	tx := chain.NewTransaction()
	tx.MoveCall(s.Contract.Target("refund_active_game_timeout"),
		chain.Object(gameID),
		chain.Object(s.Contract.ClockObjectID),
	)

	_, err := txflow.Execute(ctx, s.Wallet, tx)
	if err != nil {
		return err
	}

	return txflow.Mirror(func() error {
		//nolint:wrapcheck
		return s.BackendService.RefundRoom(ctx, backend.RefundRoomRequest{GameID: gameID})
	})
}
