package duel

// NoRound marks "no round currently mid-resolution".
const NoRound = -1

// RoundResolvable reports whether a scheduled round-close event is still
// valid. It is a pure function of the session status, the round the event was
// scheduled for, the session's current round, and the round currently being
// resolved (NoRound when none). A timeout firing for a round that already
// resolved early, or for a round the session has advanced past, is stale.
func RoundResolvable(status string, scheduledRound, currentRound, resolvingRound int) bool {
	return status == StatusPlaying &&
		scheduledRound == currentRound &&
		resolvingRound != scheduledRound
}

// AnswerTriggersResolution decides whether an arriving answer that completes
// the pair may resolve the round, as opposed to merely being recorded. It is
// evaluated identically to RoundResolvable so that a timer firing and an
// answer arriving for the same round can never both resolve it.
func AnswerTriggersResolution(status string, answeredRound, currentRound, resolvingRound int) bool {
	return RoundResolvable(status, answeredRound, currentRound, resolvingRound)
}
