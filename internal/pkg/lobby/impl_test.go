package lobby_test

import (
	"errors"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suidrift/suidrift/internal/pkg/backend"
	"github.com/suidrift/suidrift/internal/pkg/backendtest"
	"github.com/suidrift/suidrift/internal/pkg/chain"
	"github.com/suidrift/suidrift/internal/pkg/chain/chaintest"
	"github.com/suidrift/suidrift/internal/pkg/config"
	"github.com/suidrift/suidrift/internal/pkg/lobby"
	"github.com/suidrift/suidrift/internal/pkg/mist"
	"github.com/suidrift/suidrift/internal/pkg/txflow"
)

var testContract = &config.ContractConfig{
	PackageID:     "0xabc",
	GameConfigID:  "0xcfg",
	ClockObjectID: "0x6",
	ModuleName:    "game",
}

func newService(t *testing.T, wallet chain.Wallet) (*lobby.LobbyService, *backendtest.Server) {
	t.Helper()

	server := backendtest.New()
	t.Cleanup(server.Close)

	i := do.New()
	do.ProvideNamedValue(i, "backend-url", server.URL())

	client, err := backend.NewBackendService(i)
	require.NoError(t, err)

	return &lobby.LobbyService{
		BackendService: client,
		Contract:       testContract,
		Wallet:         wallet,
	}, server
}

func TestCreateGame(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{
		Addr:  "0xalice",
		Block: chaintest.SuccessWithEvent("0xabc::game::GameCreated", "0x11"),
	}
	service, server := newService(t, wallet)

	gameID, err := service.CreateGame(t.Context(), "1.5")
	require.NoError(t, err)
	assert.Equal(t, "0x11", gameID)

	submitted := wallet.Submitted()
	require.Len(t, submitted, 1)

	commands := submitted[0].Commands()
	require.Len(t, commands, 2)

	require.NotNil(t, commands[0].SplitGas)
	assert.Equal(t, "1500000000", commands[0].SplitGas.Amount.String())

	require.NotNil(t, commands[1].MoveCall)
	assert.Equal(t, "0xabc::game::create_game", commands[1].MoveCall.Target)
	require.Len(t, commands[1].MoveCall.Arguments, 1)
	assert.Equal(t, chain.ArgResult, commands[1].MoveCall.Arguments[0].Kind)

	stored, ok := server.Game("0x11")
	require.True(t, ok)
	assert.Equal(t, backend.StatusWaiting, stored.Status)
	assert.Equal(t, "0xalice", stored.PlayerA)
	assert.Equal(t, "1500000000", stored.StakeAmountMist)
}

func TestCreateGameNoWallet(t *testing.T) {
	t.Parallel()

	service, _ := newService(t, nil)

	_, err := service.CreateGame(t.Context(), "1")
	assert.ErrorIs(t, err, txflow.ErrNoWallet)
}

func TestCreateGameInvalidStake(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{Addr: "0xalice", Block: chaintest.Success()}
	service, _ := newService(t, wallet)

	for _, input := range []string{"", "0", "-1", "1.1234567890", "abc"} {
		_, err := service.CreateGame(t.Context(), input)
		assert.ErrorIs(t, err, mist.ErrInvalidStake, input)
	}

	assert.Empty(t, wallet.Submitted())
}

func TestCreateGameWalletRejection(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{Addr: "0xalice", Err: errors.New("user declined")}
	service, server := newService(t, wallet)

	_, err := service.CreateGame(t.Context(), "1")
	assert.ErrorIs(t, err, txflow.ErrWalletRejected)

	rooms, err := service.Rooms(t.Context())
	require.NoError(t, err)
	assert.Empty(t, rooms)

	_, ok := server.Game("0x11")
	assert.False(t, ok)
}

func TestCreateGameChainFailure(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{Addr: "0xalice", Block: chaintest.Failure("EInsufficientStake")}
	service, _ := newService(t, wallet)

	_, err := service.CreateGame(t.Context(), "1")

	var chainErr *txflow.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "EInsufficientStake", chainErr.Reason)

	rooms, err := service.Rooms(t.Context())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestCreateGameUnresolvedID(t *testing.T) {
	t.Parallel()

	// Confirmed success but neither event nor object change names the game.
	wallet := &chaintest.Wallet{Addr: "0xalice", Block: chaintest.Success()}
	service, server := newService(t, wallet)

	_, err := service.CreateGame(t.Context(), "1")
	assert.ErrorIs(t, err, txflow.ErrUnresolvedCreation)

	_, ok := server.Game("0x11")
	assert.False(t, ok)
}

func TestCreateGameBackendDesync(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{
		Addr:  "0xalice",
		Block: chaintest.SuccessWithEvent("0xabc::game::GameCreated", "0x11"),
	}
	service, server := newService(t, wallet)

	// Occupy the id so the mirror write is rejected.
	require.NoError(t, service.BackendService.CreateRoom(t.Context(), backend.CreateRoomRequest{
		GameID:          "0x11",
		PlayerA:         "0xother",
		StakeAmountMist: "1000000000",
	}))

	gameID, err := service.CreateGame(t.Context(), "1")

	var desyncErr *txflow.DesyncError
	require.ErrorAs(t, err, &desyncErr)

	// The game exists on chain, so the id still comes back.
	assert.Equal(t, "0x11", gameID)

	stored, ok := server.Game("0x11")
	require.True(t, ok)
	assert.Equal(t, "0xother", stored.PlayerA)
}

func TestJoinGame(t *testing.T) {
	t.Parallel()

	creator, creatorServer := newService(t, &chaintest.Wallet{
		Addr:  "0xalice",
		Block: chaintest.SuccessWithEvent("0xabc::game::GameCreated", "0x11"),
	})

	gameID, err := creator.CreateGame(t.Context(), "2")
	require.NoError(t, err)

	rooms, err := creator.Rooms(t.Context())
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	wallet := &chaintest.Wallet{Addr: "0xbob", Block: chaintest.Success()}
	joiner := &lobby.LobbyService{
		BackendService: creator.BackendService,
		Contract:       testContract,
		Wallet:         wallet,
	}

	require.NoError(t, joiner.JoinGame(t.Context(), rooms[0]))

	submitted := wallet.Submitted()
	require.Len(t, submitted, 1)

	commands := submitted[0].Commands()
	require.Len(t, commands, 2)

	require.NotNil(t, commands[0].SplitGas)
	assert.Equal(t, "2000000000", commands[0].SplitGas.Amount.String())

	require.NotNil(t, commands[1].MoveCall)
	assert.Equal(t, "0xabc::game::join_game", commands[1].MoveCall.Target)

	arguments := commands[1].MoveCall.Arguments
	require.Len(t, arguments, 3)
	assert.Equal(t, chain.Object(gameID), arguments[0])
	assert.Equal(t, chain.ArgResult, arguments[1].Kind)
	assert.Equal(t, chain.Object("0x6"), arguments[2])

	stored, ok := creatorServer.Game(gameID)
	require.True(t, ok)
	assert.Equal(t, backend.StatusActive, stored.Status)
	assert.Equal(t, "0xbob", stored.PlayerB)
}

func TestJoinGameWalletRejection(t *testing.T) {
	t.Parallel()

	wallet := &chaintest.Wallet{Addr: "0xbob", Err: errors.New("user declined")}
	service, _ := newService(t, wallet)

	err := service.JoinGame(t.Context(), backend.Room{
		GameID:          "0x11",
		PlayerA:         "0xalice",
		StakeAmountMist: "1000000000",
	})
	assert.ErrorIs(t, err, txflow.ErrWalletRejected)
}
