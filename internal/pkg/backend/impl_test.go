package backend_test

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suidrift/suidrift/internal/pkg/backend"
	"github.com/suidrift/suidrift/internal/pkg/backendtest"
)

func newClient(t *testing.T) (*backend.BackendService, *backendtest.Server) {
	t.Helper()

	server := backendtest.New()
	t.Cleanup(server.Close)

	i := do.New()
	do.ProvideNamedValue(i, "backend-url", server.URL())

	client, err := backend.NewBackendService(i)
	require.NoError(t, err)

	return client, server
}

func TestRoomLifecycle(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)
	ctx := t.Context()

	rooms, err := client.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, client.CreateRoom(ctx, backend.CreateRoomRequest{
		GameID:          "0x1",
		PlayerA:         "0xalice",
		StakeAmountMist: "1000000000",
	}))

	rooms, err = client.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "0x1", rooms[0].GameID)
	assert.Equal(t, "1000000000", rooms[0].StakeAmountMist)

	game, err := client.GetGame(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, backend.StatusWaiting, game.Status)
	assert.Equal(t, "0xalice", game.PlayerA)

	// A joined room leaves the waiting list.
	require.NoError(t, client.JoinRoom(ctx, backend.JoinRoomRequest{GameID: "0x1", PlayerB: "0xbob"}))

	rooms, err = client.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestGetGameNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)

	_, err := client.GetGame(t.Context(), "0xmissing")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Game not found", apiErr.Detail)
}

func TestErrorDetailPropagates(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)
	ctx := t.Context()

	require.NoError(t, client.CreateRoom(ctx, backend.CreateRoomRequest{
		GameID:          "0x1",
		PlayerA:         "0xalice",
		StakeAmountMist: "1000000000",
	}))

	err := client.CreateRoom(ctx, backend.CreateRoomRequest{
		GameID:          "0x1",
		PlayerA:         "0xalice",
		StakeAmountMist: "1000000000",
	})

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Game ID already exists", apiErr.Detail)
	assert.NotErrorIs(t, err, backend.ErrNotFound)
}

func TestSettledGameCarriesSignature(t *testing.T) {
	t.Parallel()

	client, server := newClient(t)
	ctx := t.Context()

	server.SetTarget(48.8566, 2.3522)

	require.NoError(t, client.CreateRoom(ctx, backend.CreateRoomRequest{
		GameID:          "0x2",
		PlayerA:         "0xalice",
		StakeAmountMist: "2500000000",
	}))
	require.NoError(t, client.JoinRoom(ctx, backend.JoinRoomRequest{GameID: "0x2", PlayerB: "0xbob"}))

	require.NoError(t, client.SubmitGuess(ctx, backend.GuessRequest{
		GameID: "0x2", PlayerAddress: "0xalice", Lat: 48.85, Lon: 2.35,
	}))
	require.NoError(t, client.SubmitGuess(ctx, backend.GuessRequest{
		GameID: "0x2", PlayerAddress: "0xbob", Lat: 35.67, Lon: 139.65,
	}))

	game, err := client.GetGame(ctx, "0x2")
	require.NoError(t, err)

	assert.Equal(t, backend.StatusSettled, game.Status)
	assert.Equal(t, "0xalice", game.Winner)
	assert.NotEmpty(t, game.Signature)
	assert.NotEmpty(t, game.WalrusBlobBytes)
	assert.Less(t, game.Distances["0xalice"], game.Distances["0xbob"])
}

func TestLeaderboardAndHistoryEnvelopes(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)
	ctx := t.Context()

	require.NoError(t, client.CreateRoom(ctx, backend.CreateRoomRequest{
		GameID:          "0x3",
		PlayerA:         "0xalice",
		StakeAmountMist: "1000000000",
	}))
	require.NoError(t, client.JoinRoom(ctx, backend.JoinRoomRequest{GameID: "0x3", PlayerB: "0xbob"}))
	require.NoError(t, client.SubmitGuess(ctx, backend.GuessRequest{
		GameID: "0x3", PlayerAddress: "0xalice", Lat: 48.85, Lon: 2.35,
	}))
	require.NoError(t, client.SubmitGuess(ctx, backend.GuessRequest{
		GameID: "0x3", PlayerAddress: "0xbob", Lat: 0, Lon: 0,
	}))

	leaderboard, err := client.GetLeaderboard(ctx, 20)
	require.NoError(t, err)
	require.Len(t, leaderboard.Ranking, 1)
	assert.Equal(t, 1, leaderboard.Ranking[0].Rank)
	assert.Equal(t, "0xalice", leaderboard.Ranking[0].Player)
	assert.Equal(t, 1, leaderboard.Ranking[0].Wins)

	history, err := client.GetHistory(ctx, 20)
	require.NoError(t, err)
	require.Len(t, history.Records, 1)
	assert.Equal(t, "0x3", history.Records[0].GameID)
	assert.Equal(t, "0xbob", history.Records[0].Loser)
}

func TestResolveImageURL(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)

	assert.Empty(t, client.ResolveImageURL(""))
	assert.Equal(t, "https://cdn.example/pic.jpg", client.ResolveImageURL("https://cdn.example/pic.jpg"))
	assert.Equal(t, client.BaseURL+"/problemBank/pic.jpg", client.ResolveImageURL("problemBank/pic.jpg"))
	assert.Equal(t, client.BaseURL+"/problemBank/pic.jpg", client.ResolveImageURL("/problemBank/pic.jpg"))
}
