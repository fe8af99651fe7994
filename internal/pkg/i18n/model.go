package i18n

type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

func (l Language) Valid() bool {
	return l == English || l == Chinese
}

// messages holds the strings the command surface emits. Keys follow the
// message-id convention of the web client this talks to.
var messages = map[Language]map[string]string{
	English: {
		"failedToFetchRooms":       "Failed to fetch rooms",
		"noRoomsWaiting":           "No rooms waiting. Create one with a stake to start.",
		"roomLine":                 "room {id} by {creator}, stake {stake} SUI",
		"gameCreatedStake":         "Game created with stake {stake} SUI",
		"createFailed":             "Create failed: {reason}",
		"createUnresolved":         "The chain accepted the stake but the new game could not be identified. Do not retry; verify your games and contact support.",
		"joinedGame":               "Joined game {id}",
		"joinFailed":               "Join failed: {reason}",
		"invalidStakeAmount":       "Invalid stake amount",
		"invalidRoomStake":         "This room carries an invalid stake",
		"transactionRejected":      "Transaction rejected",
		"guessSubmitted":           "Guess submitted, waiting for opponent",
		"submitGuessFailed":        "Failed to submit guess",
		"gameNotFound":             "Game not found",
		"gameCancelledOrRefunded":  "Game was cancelled or refunded",
		"gameCancelled":            "Game cancelled",
		"cancelFailed":             "Cancel failed: {reason}",
		"refundSuccessful":         "Refund successful",
		"refundFailed":             "Refund failed: {reason}",
		"rewardClaimed":            "Reward claimed",
		"claimFailed":              "Claim failed: {reason}",
		"claimAndPlayAgainSuccess": "Reward claimed, new game {id} created",
		"claimAndPlayAgainFailed":  "Claim and play again failed: {reason}",
		"backendOutOfSync":         "The chain transaction succeeded but the lobby could not be updated ({reason}). Please verify the game state before acting again.",
		"statusLine":               "game {id}: {status}",
		"countdownLine":            "{seconds}s left to guess",
		"challengeHint":            "Hint: {hint}",
		"challengeImage":           "Image: {url}",
		"winnerLine":               "Winner: {winner} ({distance} m)",
		"waitingForOpponent":       "Waiting for an opponent to join...",
		"backToLobby":              "Returning to lobby",
		"walletRequired":           "No wallet configured. Set a key file first.",
	},
	Chinese: {
		"failedToFetchRooms":       "获取房间列表失败",
		"noRoomsWaiting":           "暂无等待中的房间。质押并创建一个开始游戏。",
		"roomLine":                 "房间 {id}，创建者 {creator}，质押 {stake} SUI",
		"gameCreatedStake":         "游戏已创建，质押 {stake} SUI",
		"createFailed":             "创建失败：{reason}",
		"createUnresolved":         "链上已接受质押，但无法识别新游戏。请勿重试；请核实您的游戏并联系支持。",
		"joinedGame":               "已加入游戏 {id}",
		"joinFailed":               "加入失败：{reason}",
		"invalidStakeAmount":       "质押金额无效",
		"invalidRoomStake":         "该房间的质押金额无效",
		"transactionRejected":      "交易被拒绝",
		"guessSubmitted":           "已提交猜测，等待对手",
		"submitGuessFailed":        "提交猜测失败",
		"gameNotFound":             "未找到游戏",
		"gameCancelledOrRefunded":  "游戏已取消或已退款",
		"gameCancelled":            "游戏已取消",
		"cancelFailed":             "取消失败：{reason}",
		"refundSuccessful":         "退款成功",
		"refundFailed":             "退款失败：{reason}",
		"rewardClaimed":            "奖励已领取",
		"claimFailed":              "领取失败：{reason}",
		"claimAndPlayAgainSuccess": "奖励已领取，新游戏 {id} 已创建",
		"claimAndPlayAgainFailed":  "领取并再来一局失败:{reason}",
		"backendOutOfSync":         "链上交易已成功，但大厅状态未能更新（{reason}）。请先核实游戏状态再操作。",
		"statusLine":               "游戏 {id}:{status}",
		"countdownLine":            "剩余 {seconds} 秒",
		"challengeHint":            "提示:{hint}",
		"challengeImage":           "图片:{url}",
		"winnerLine":               "胜者:{winner}（{distance} 米）",
		"waitingForOpponent":       "等待对手加入...",
		"backToLobby":              "返回大厅",
		"walletRequired":           "未配置钱包。请先设置密钥文件。",
	},
}
