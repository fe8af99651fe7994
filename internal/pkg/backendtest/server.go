// Package backendtest runs an in-process stand-in for the match backend so
// client flows can be tested against the real HTTP contract: room lifecycle,
// guess settlement by distance, oracle-style outcome signatures, history and
// leaderboard projections.
package backendtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/suidrift/suidrift/internal/pkg/backend"
)

const testBlobID = "backendtest-blob"

type game struct {
	backend.GameState

	targetLat float64
	targetLon float64
}

type Server struct {
	PublicKey ed25519.PublicKey

	httpServer *httptest.Server
	signingKey ed25519.PrivateKey

	mu           sync.Mutex
	games        map[string]*game
	history      []backend.HistoryEntry
	requestCount int

	targetLat float64
	targetLon float64
}

func New() *Server {
	publicKey, signingKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}

	s := &Server{
		PublicKey:  publicKey,
		signingKey: signingKey,

		games: map[string]*game{},

		// The default challenge target. Tests may move it.
		targetLat: 48.8566,
		targetLon: 2.3522,
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			s.requestCount++
			s.mu.Unlock()

			return next(c)
		}
	})

	e.GET("/rooms", s.listRooms)
	e.GET("/game/:id", s.getGame)
	e.GET("/leaderboard", s.getLeaderboard)
	e.GET("/history", s.getHistory)
	e.POST("/create_room", s.createRoom)
	e.POST("/join_room", s.joinRoom)
	e.POST("/submit", s.submitGuess)
	e.POST("/cancel_room", s.cancelRoom)
	e.POST("/refund_room", s.refundRoom)

	s.httpServer = httptest.NewServer(e)

	return s
}

func (s *Server) URL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// RequestCount reports how many requests the server has handled so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requestCount
}

// SetTarget moves the hidden challenge coordinate for games created later.
func (s *Server) SetTarget(lat float64, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.targetLat = lat
	s.targetLon = lon
}

// DropGame forgets a game entirely, producing 404s for subsequent polls.
func (s *Server) DropGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.games, gameID)
}

// Game returns a copy of the stored state for assertions.
func (s *Server) Game(gameID string) (backend.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[gameID]
	if !ok {
		return backend.GameState{}, false
	}

	return stored.GameState, true
}

func detail(c echo.Context, status int, message string) error {
	//nolint:wrapcheck
	return c.JSON(status, map[string]string{"detail": message})
}

func (s *Server) createRoom(c echo.Context) error {
	var req backend.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[req.GameID]; exists {
		return detail(c, http.StatusBadRequest, "Game ID already exists")
	}

	stake, err := strconv.ParseInt(req.StakeAmountMist, 10, 64)
	if err != nil {
		return detail(c, http.StatusBadRequest, "Invalid stake amount")
	}

	if stake <= 0 {
		return detail(c, http.StatusBadRequest, "Stake amount must be greater than zero")
	}

	s.games[req.GameID] = &game{
		GameState: backend.GameState{
			ID:              req.GameID,
			Status:          backend.StatusWaiting,
			PlayerA:         req.PlayerA,
			StakeAmountMist: req.StakeAmountMist,
			Guesses:         map[string]backend.Guess{},
			StartTime:       float64(time.Now().Unix()),
			TargetImage:     "/static/challenge.jpg",
			TargetHint:      "Find the city",
		},

		targetLat: s.targetLat,
		targetLon: s.targetLon,
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, map[string]string{"status": "created", "game_id": req.GameID})
}

func (s *Server) listRooms(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := []backend.Room{}

	for _, stored := range s.games {
		if stored.Status == backend.StatusWaiting {
			rooms = append(rooms, backend.Room{
				GameID:          stored.ID,
				PlayerA:         stored.PlayerA,
				StakeAmountMist: stored.StakeAmountMist,
			})
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].GameID < rooms[j].GameID })

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, rooms)
}

func (s *Server) getGame(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[c.Param("id")]
	if !ok {
		return detail(c, http.StatusNotFound, "Game not found")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, stored.GameState)
}

func (s *Server) joinRoom(c echo.Context) error {
	var req backend.JoinRoomRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[req.GameID]
	if !ok {
		return detail(c, http.StatusNotFound, "Game not found")
	}

	if stored.Status != backend.StatusWaiting {
		return detail(c, http.StatusBadRequest, "Game not available")
	}

	stored.PlayerB = req.PlayerB
	stored.Status = backend.StatusActive
	stored.StartTime = float64(time.Now().Unix())

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, map[string]string{"status": "joined"})
}

func (s *Server) submitGuess(c echo.Context) error {
	var req backend.GuessRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[req.GameID]
	if !ok {
		return detail(c, http.StatusNotFound, "Game not found")
	}

	if stored.Status != backend.StatusActive {
		return detail(c, http.StatusBadRequest, "Game not active")
	}

	stored.Guesses[req.PlayerAddress] = backend.Guess{Lat: req.Lat, Lon: req.Lon}

	if len(stored.Guesses) == 2 {
		s.settle(stored)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, map[string]string{"status": "submitted"})
}

// settle decides the winner by haversine distance and signs the outcome the
// way the oracle does: game id and winner as fixed 32-byte values, followed
// by the blob id bytes.
func (s *Server) settle(stored *game) {
	guessA, okA := stored.Guesses[stored.PlayerA]
	guessB, okB := stored.Guesses[stored.PlayerB]

	if !okA || !okB {
		return
	}

	distA := haversineMeters(guessA.Lat, guessA.Lon, stored.targetLat, stored.targetLon)
	distB := haversineMeters(guessB.Lat, guessB.Lon, stored.targetLat, stored.targetLon)

	winner, loser := stored.PlayerA, stored.PlayerB
	if distB < distA {
		winner, loser = stored.PlayerB, stored.PlayerA
	}

	blobBytes := []byte(testBlobID)

	message := append(fixed32(stored.ID), fixed32(winner)...)
	message = append(message, blobBytes...)

	stored.Status = backend.StatusSettled
	stored.Winner = winner
	stored.Distances = map[string]float64{
		stored.PlayerA: distA,
		stored.PlayerB: distB,
	}
	stored.WalrusBlobID = testBlobID
	stored.WalrusBlobBytes = blobBytes
	stored.Signature = ed25519.Sign(s.signingKey, message)

	s.history = append(s.history, backend.HistoryEntry{
		GameID:          stored.ID,
		Winner:          winner,
		Loser:           loser,
		StakeAmountMist: stored.StakeAmountMist,
		SettledAt:       float64(time.Now().Unix()),
	})
}

func (s *Server) cancelRoom(c echo.Context) error {
	var req backend.CancelRoomRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[req.GameID]
	if !ok {
		return detail(c, http.StatusNotFound, "Game not found")
	}

	if stored.Status != backend.StatusWaiting {
		return detail(c, http.StatusBadRequest, "Only waiting game can be cancelled")
	}

	if stored.PlayerA != req.PlayerAddress {
		return detail(c, http.StatusForbidden, "Only creator can cancel waiting game")
	}

	stored.Status = backend.StatusCancelled

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) refundRoom(c echo.Context) error {
	var req backend.RefundRoomRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[req.GameID]
	if !ok {
		return detail(c, http.StatusNotFound, "Game not found")
	}

	if stored.Status != backend.StatusActive {
		return detail(c, http.StatusBadRequest, "Only active game can be refunded")
	}

	stored.Status = backend.StatusRefunded

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, map[string]string{"status": "refunded"})
}

func (s *Server) getHistory(c echo.Context) error {
	limit := boundedLimit(c.QueryParam("limit"))

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]backend.HistoryEntry, len(s.history))
	copy(records, s.history)

	sort.Slice(records, func(i, j int) bool { return records[i].SettledAt > records[j].SettledAt })

	if len(records) > limit {
		records = records[:limit]
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, backend.HistoryResponse{
		TotalRecords: len(s.history),
		Records:      records,
	})
}

func (s *Server) getLeaderboard(c echo.Context) error {
	limit := boundedLimit(c.QueryParam("limit"))

	s.mu.Lock()
	defer s.mu.Unlock()

	type aggregate struct {
		player string
		wins   int
		earned int64
		payout int64
	}

	aggregates := map[string]*aggregate{}

	for _, record := range s.history {
		row, ok := aggregates[record.Winner]
		if !ok {
			row = &aggregate{player: record.Winner}
			aggregates[record.Winner] = row
		}

		stake, _ := strconv.ParseInt(record.StakeAmountMist, 10, 64)

		row.wins++
		row.earned += stake
		row.payout += 2 * stake
	}

	rows := make([]*aggregate, 0, len(aggregates))
	for _, row := range aggregates {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].earned != rows[j].earned {
			return rows[i].earned > rows[j].earned
		}

		if rows[i].wins != rows[j].wins {
			return rows[i].wins > rows[j].wins
		}

		return rows[i].payout > rows[j].payout
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	ranking := make([]backend.LeaderboardEntry, 0, len(rows))
	for index, row := range rows {
		ranking = append(ranking, backend.LeaderboardEntry{
			Rank:            index + 1,
			Player:          row.player,
			Wins:            row.wins,
			TotalEarnedMist: strconv.FormatInt(row.earned, 10),
			TotalPayoutMist: strconv.FormatInt(row.payout, 10),
		})
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, backend.LeaderboardResponse{
		TotalPlayers: len(aggregates),
		TotalRecords: len(s.history),
		Ranking:      ranking,
	})
}

func boundedLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 50
	}

	if limit > 200 {
		return 200
	}

	return limit
}

// fixed32 decodes a 0x-prefixed hex id into exactly 32 bytes, zero padded on
// the left.
func fixed32(value string) []byte {
	decoded, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		decoded = []byte(value)
	}

	result := make([]byte, 32)
	if len(decoded) > 32 {
		decoded = decoded[len(decoded)-32:]
	}

	copy(result[32-len(decoded):], decoded)

	return result
}

const earthRadiusMeters = 6371000.0

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRadians := func(degrees float64) float64 { return degrees * math.Pi / 180 }

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
