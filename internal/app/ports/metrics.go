package ports

import "mevsbrain/internal/domain/game"

type GameMetrics interface {
	RecordSessionStarted()
	RecordFinish(win bool)
	RecordEventTriggered(eventType string)
	RecordChallengeResult(challengeType game.ChallengeType, success bool)
}
