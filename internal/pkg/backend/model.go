package backend

import "encoding/json"

// ByteList carries raw bytes across the backend's JSON representation, a
// plain integer array rather than base64.
type ByteList []byte

func (b *ByteList) UnmarshalJSON(data []byte) error {
	var ints []int

	if err := json.Unmarshal(data, &ints); err != nil {
		//nolint:wrapcheck
		return err
	}

	decoded := make([]byte, len(ints))
	for i, v := range ints {
		decoded[i] = byte(v)
	}

	*b = decoded

	return nil
}

func (b ByteList) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}

	//nolint:wrapcheck
	return json.Marshal(ints)
}

// Room is a read-only projection of one waiting match, fully replaced on
// each lobby refresh.
type Room struct {
	GameID          string `json:"game_id"`
	PlayerA         string `json:"player_a"`
	StakeAmountMist string `json:"stake_amount_mist"`
}

type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"
	StatusActive    GameStatus = "active"
	StatusSettled   GameStatus = "settled"
	StatusCancelled GameStatus = "cancelled"
	StatusRefunded  GameStatus = "refunded"
)

// Terminal reports whether the backend will never move the match again.
func (s GameStatus) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled || s == StatusRefunded
}

type Guess struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GameState mirrors one match as the backend reports it. The client never
// mutates this model directly, it only reflects it.
type GameState struct {
	ID               string             `json:"id"`
	PackageID        string             `json:"package_id"`
	Status           GameStatus         `json:"status"`
	PlayerA          string             `json:"player_a"`
	PlayerB          string             `json:"player_b"`
	Winner           string             `json:"winner"`
	StakeAmountMist  string             `json:"stake_amount_mist"`
	Guesses          map[string]Guess   `json:"guesses"`
	Distances        map[string]float64 `json:"distances"`
	Signature        ByteList           `json:"signature"`
	WalrusBlobID     string             `json:"walrus_blob_id"`
	WalrusBlobBytes  ByteList           `json:"walrus_blob_id_bytes"`
	StoredOnWalrus   bool               `json:"stored_on_walrus"`
	StartTime        float64            `json:"start_time"`
	TargetImage      string             `json:"target_image"`
	TargetHint       string             `json:"target_hint"`
	TargetDifficulty string             `json:"target_difficulty"`
}

type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	Player          string `json:"player"`
	Wins            int    `json:"wins"`
	TotalEarnedMist string `json:"total_earned_mist"`
	TotalPayoutMist string `json:"total_payout_mist"`
}

type LeaderboardResponse struct {
	TotalPlayers int                `json:"total_players"`
	TotalRecords int                `json:"total_records"`
	Ranking      []LeaderboardEntry `json:"ranking"`
}

type HistoryEntry struct {
	GameID          string  `json:"game_id"`
	Winner          string  `json:"winner"`
	Loser           string  `json:"loser"`
	StakeAmountMist string  `json:"stake_amount_mist"`
	SettledAt       float64 `json:"settled_at"`
}

type HistoryResponse struct {
	TotalRecords int            `json:"total_records"`
	Records      []HistoryEntry `json:"records"`
}

type CreateRoomRequest struct {
	GameID          string `json:"game_id"`
	PlayerA         string `json:"player_a"`
	StakeAmountMist string `json:"stake_amount_mist"`
}

type JoinRoomRequest struct {
	GameID  string `json:"game_id"`
	PlayerB string `json:"player_b"`
}

type GuessRequest struct {
	GameID        string  `json:"game_id"`
	PlayerAddress string  `json:"player_address"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

type CancelRoomRequest struct {
	GameID        string `json:"game_id"`
	PlayerAddress string `json:"player_address"`
}

type RefundRoomRequest struct {
	GameID string `json:"game_id"`
}
