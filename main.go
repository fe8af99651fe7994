package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/suidrift/suidrift/internal/pkg/backend"
	"github.com/suidrift/suidrift/internal/pkg/chain"
	"github.com/suidrift/suidrift/internal/pkg/common"
	"github.com/suidrift/suidrift/internal/pkg/config"
	"github.com/suidrift/suidrift/internal/pkg/i18n"
	"github.com/suidrift/suidrift/internal/pkg/leaderboard"
	"github.com/suidrift/suidrift/internal/pkg/lobby"
	"github.com/suidrift/suidrift/internal/pkg/match"
	"github.com/suidrift/suidrift/internal/pkg/mist"
	"github.com/suidrift/suidrift/internal/pkg/txflow"
)

type App struct {
	DatabaseService *common.DatabaseService `do:""`
	I18nService     *i18n.I18nService       `do:""`
	BackendService  *backend.BackendService `do:""`

	LobbyService       *lobby.LobbyService             `do:""`
	MatchService       *match.MatchService             `do:""`
	LeaderboardService *leaderboard.LeaderboardService `do:""`
}

func newApp(cmd *cli.Command) (*App, error) {
	i := do.New()

	do.ProvideNamedValue(i, "data-dir", cmd.String("data-dir"))
	do.ProvideNamedValue(i, "backend-url", cmd.String("backend-url"))
	do.ProvideNamedValue(i, "rpc-url", cmd.String("rpc-url"))
	do.ProvideNamedValue(i, "key-file", cmd.String("key-file"))

	contract, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load contract config: %w", err)
	}

	do.ProvideValue(i, contract)

	do.Provide(i, common.NewDatabaseService)
	do.Provide(i, i18n.NewI18nService)
	do.Provide(i, backend.NewBackendService)
	do.Provide(i, newWallet)
	do.Provide(i, lobby.NewLobbyService)
	do.Provide(i, match.NewMatchService)
	do.Provide(i, leaderboard.NewLeaderboardService)

	do.Provide(i, do.InvokeStruct[App])

	app, err := do.Invoke[App](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	return &app, nil
}

// newWallet attaches a key-file wallet when one is configured. Read-only
// commands work without a wallet; staking commands fail with a clear
// message.
func newWallet(i do.Injector) (chain.Wallet, error) {
	keyFile := do.MustInvokeNamed[string](i, "key-file")
	if len(keyFile) == 0 {
		return nil, nil
	}

	return chain.NewChainService(i)
}

// failureMessage maps the error taxonomy of a chain action onto user
// messaging: rejections are retryable, unresolved creation and backend
// desync explicitly are not.
func failureMessage(app *App, err error, failKey string) string {
	t := app.I18nService.T

	var chainErr *txflow.ChainError
	var desyncErr *txflow.DesyncError

	switch {
	case errors.Is(err, mist.ErrInvalidStake):
		return t("invalidStakeAmount", nil)
	case errors.Is(err, mist.ErrInvalidAmount):
		return t("invalidRoomStake", nil)
	case errors.Is(err, txflow.ErrWalletRejected):
		return t("transactionRejected", nil)
	case errors.Is(err, txflow.ErrUnresolvedCreation):
		return t("createUnresolved", nil)
	case errors.As(err, &desyncErr):
		return t("backendOutOfSync", i18n.Params{"reason": desyncErr.Err})
	case errors.As(err, &chainErr):
		return t(failKey, i18n.Params{"reason": chainErr.Reason})
	case errors.Is(err, txflow.ErrNoWallet):
		return t("walletRequired", nil)
	default:
		return t(failKey, i18n.Params{"reason": err})
	}
}

// challengeLines renders the hint and image the player guesses against.
// Either part may be absent while the backend is still assigning a target.
func challengeLines(app *App, game *backend.GameState) []string {
	var lines []string

	if len(game.TargetHint) > 0 {
		lines = append(lines, app.I18nService.T("challengeHint", i18n.Params{"hint": game.TargetHint}))
	}

	if len(game.TargetImage) > 0 {
		lines = append(lines, app.I18nService.T("challengeImage", i18n.Params{
			"url": app.BackendService.ResolveImageURL(game.TargetImage),
		}))
	}

	return lines
}

func runRooms(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	rooms, err := app.BackendService.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", app.I18nService.T("failedToFetchRooms", nil), err)
	}

	if len(rooms) == 0 {
		fmt.Println(app.I18nService.T("noRoomsWaiting", nil))

		return nil
	}

	for _, room := range rooms {
		stake, err := mist.FormatString(room.StakeAmountMist)
		if err != nil {
			stake = room.StakeAmountMist
		}

		fmt.Println(app.I18nService.T("roomLine", i18n.Params{
			"id":      common.ShortID(room.GameID),
			"creator": common.ShortAddress(room.PlayerA),
			"stake":   stake,
		}))
	}

	return nil
}

func runCreate(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	stakeInput := cmd.String("stake")
	if len(stakeInput) == 0 {
		stakeInput = app.DatabaseService.GetSetting(common.SettingLastStake, "1")
	}

	gameID, err := app.LobbyService.CreateGame(ctx, stakeInput)
	if err != nil {
		var desyncErr *txflow.DesyncError
		if errors.As(err, &desyncErr) {
			// The game exists on chain; report both the id and the desync.
			fmt.Println(gameID)
		}

		return errors.New(failureMessage(app, err, "createFailed"))
	}

	_ = app.DatabaseService.PutSetting(common.SettingLastStake, stakeInput)

	stake, _ := mist.ParseStake(stakeInput)
	fmt.Println(app.I18nService.T("gameCreatedStake", i18n.Params{"stake": mist.Format(stake)}))
	fmt.Println(gameID)

	return nil
}

func runJoin(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	gameID := cmd.String("game")

	rooms, err := app.BackendService.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", app.I18nService.T("failedToFetchRooms", nil), err)
	}

	for _, room := range rooms {
		if room.GameID != gameID {
			continue
		}

		err = app.LobbyService.JoinGame(ctx, room)
		if err != nil {
			return errors.New(failureMessage(app, err, "joinFailed"))
		}

		fmt.Println(app.I18nService.T("joinedGame", i18n.Params{"id": common.ShortID(gameID)}))

		return nil
	}

	return errors.New(app.I18nService.T("gameNotFound", nil))
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	t := app.I18nService.T
	gameID := cmd.String("game")

	session := app.MatchService.Open(ctx, gameID)
	defer session.Close()

	lastStatus := backend.GameStatus("")

	for event := range session.Events() {
		switch event.Kind {
		case match.EventState:
			if event.Game.Status == lastStatus {
				continue
			}

			lastStatus = event.Game.Status

			fmt.Println(t("statusLine", i18n.Params{
				"id":     common.ShortID(gameID),
				"status": event.Game.Status,
			}))

			switch event.Game.Status {
			case backend.StatusWaiting:
				fmt.Println(t("waitingForOpponent", nil))
			case backend.StatusActive:
				for _, line := range challengeLines(app, event.Game) {
					fmt.Println(line)
				}
			case backend.StatusSettled:
				fmt.Println(t("winnerLine", i18n.Params{
					"winner":   common.ShortAddress(event.Game.Winner),
					"distance": fmt.Sprintf("%.0f", event.Game.Distances[event.Game.Winner]),
				}))

				return nil
			}
		case match.EventCountdown:
			if event.SecondsLeft%30 == 0 {
				fmt.Println(t("countdownLine", i18n.Params{"seconds": event.SecondsLeft}))
			}
		case match.EventVanished:
			fmt.Println(t("gameNotFound", nil))
			fmt.Println(t("backToLobby", nil))

			return nil
		case match.EventClosed:
			fmt.Println(t("gameCancelledOrRefunded", nil))
			fmt.Println(t("backToLobby", nil))

			return nil
		}
	}

	return nil
}

func runGuess(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	gameID := cmd.String("game")

	game, err := app.BackendService.GetGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("%s: %w", app.I18nService.T("submitGuessFailed", nil), err)
	}

	for _, line := range challengeLines(app, game) {
		fmt.Println(line)
	}

	err = app.MatchService.SubmitGuess(ctx, gameID, cmd.Float64("lat"), cmd.Float64("lon"))
	if err != nil {
		return fmt.Errorf("%s: %w", app.I18nService.T("submitGuessFailed", nil), err)
	}

	fmt.Println(app.I18nService.T("guessSubmitted", nil))

	return nil
}

func runSettle(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	game, err := app.BackendService.GetGame(ctx, cmd.String("game"))
	if err != nil {
		return errors.New(failureMessage(app, err, "claimFailed"))
	}

	if cmd.Bool("again") {
		newGameID, err := app.MatchService.SettleAndPlayAgain(ctx, game)
		if err != nil {
			return errors.New(failureMessage(app, err, "claimAndPlayAgainFailed"))
		}

		fmt.Println(app.I18nService.T("claimAndPlayAgainSuccess", i18n.Params{"id": common.ShortID(newGameID)}))
		fmt.Println(newGameID)

		return nil
	}

	err = app.MatchService.Settle(ctx, game)
	if err != nil {
		return errors.New(failureMessage(app, err, "claimFailed"))
	}

	fmt.Println(app.I18nService.T("rewardClaimed", nil))

	return nil
}

func runCancel(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	game, err := app.BackendService.GetGame(ctx, cmd.String("game"))
	if err != nil {
		return errors.New(failureMessage(app, err, "cancelFailed"))
	}

	err = app.MatchService.CancelWaiting(ctx, game)
	if err != nil {
		return errors.New(failureMessage(app, err, "cancelFailed"))
	}

	fmt.Println(app.I18nService.T("gameCancelled", nil))

	return nil
}

func runRefund(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	err = app.MatchService.RefundTimeout(ctx, cmd.String("game"))
	if err != nil {
		return errors.New(failureMessage(app, err, "refundFailed"))
	}

	fmt.Println(app.I18nService.T("refundSuccessful", nil))

	return nil
}

func runLeaderboard(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	ranking, history, err := app.LeaderboardService.Fetch(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	for _, entry := range ranking.Ranking {
		earned, err := mist.FormatString(entry.TotalEarnedMist)
		if err != nil {
			earned = entry.TotalEarnedMist
		}

		fmt.Printf("%3d  %s  %d wins  %s SUI\n",
			entry.Rank, common.ShortAddress(entry.Player), entry.Wins, earned)
	}

	for _, record := range history.Records {
		stake, err := mist.FormatString(record.StakeAmountMist)
		if err != nil {
			stake = record.StakeAmountMist
		}

		fmt.Printf("%s  %s > %s  %s SUI\n",
			common.ShortID(record.GameID),
			common.ShortAddress(record.Winner),
			common.ShortAddress(record.Loser),
			stake)
	}

	return nil
}

func runLang(_ context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	selected := cmd.String("set")
	if len(selected) == 0 {
		fmt.Println(app.I18nService.Language())

		return nil
	}

	err = app.I18nService.SetLanguage(i18n.Language(selected))
	if err != nil {
		return err
	}

	fmt.Println(app.I18nService.Language())

	return nil
}

func runTheme(_ context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.DatabaseService.Shutdown()

	selected := cmd.String("set")
	if len(selected) == 0 {
		fmt.Println(app.DatabaseService.GetSetting(common.SettingTheme, "dark"))

		return nil
	}

	if selected != "dark" && selected != "light" {
		return fmt.Errorf("failed to set theme: unsupported theme %q", selected)
	}

	err = app.DatabaseService.PutSetting(common.SettingTheme, selected)
	if err != nil {
		return err
	}

	fmt.Println(selected)

	return nil
}

func main() {
	_ = godotenv.Load()

	gameFlag := &cli.StringFlag{
		Name:     "game",
		Required: true,
	}

	//nolint:exhaustruct
	cmd := &cli.Command{
		Name: "suidrift",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend-url",
				Value:   "http://127.0.0.1:8000",
				Sources: cli.EnvVars("SUIDRIFT_BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Value:   "https://fullnode.testnet.sui.io:443",
				Sources: cli.EnvVars("SUIDRIFT_RPC_URL"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "./suidrift/data",
				Sources: cli.EnvVars("SUIDRIFT_DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "key-file",
				Sources: cli.EnvVars("SUIDRIFT_KEY_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "rooms",
				Action: runRooms,
			},
			{
				Name: "create",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stake"},
				},
				Action: runCreate,
			},
			{
				Name:   "join",
				Flags:  []cli.Flag{gameFlag},
				Action: runJoin,
			},
			{
				Name:   "watch",
				Flags:  []cli.Flag{gameFlag},
				Action: runWatch,
			},
			{
				Name: "guess",
				Flags: []cli.Flag{
					gameFlag,
					&cli.Float64Flag{Name: "lat", Required: true},
					&cli.Float64Flag{Name: "lon", Required: true},
				},
				Action: runGuess,
			},
			{
				Name: "settle",
				Flags: []cli.Flag{
					gameFlag,
					&cli.BoolFlag{Name: "again"},
				},
				Action: runSettle,
			},
			{
				Name:   "cancel",
				Flags:  []cli.Flag{gameFlag},
				Action: runCancel,
			},
			{
				Name:   "refund",
				Flags:  []cli.Flag{gameFlag},
				Action: runRefund,
			},
			{
				Name: "leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: runLeaderboard,
			},
			{
				Name: "lang",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "set"},
				},
				Action: runLang,
			},
			{
				Name: "theme",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "set"},
				},
				Action: runTheme,
			},
		},
		DefaultCommand: "rooms",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
