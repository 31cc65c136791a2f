package room

type PlayerState struct {
	Playing bool    `json:"playing"`
	Time    float64 `json:"time"`
}

type RemovalOutcome uint8

const (
	// OutcomeNone: the session was never bound, or its room was already
	// gone. Nothing to broadcast.
	OutcomeNone RemovalOutcome = iota
	OutcomeMemberLeft
	OutcomeHostLeft
	OutcomeRoomNowEmpty
)
