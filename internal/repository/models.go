package repository

type Member struct {
	SessionID string
	Username  string
}

type PlayerState struct {
	Playing bool
	Time    float64
}

// Room is a point-in-time snapshot; mutations go through repository
// operations only.
type Room struct {
	Code     string
	HostID   string
	Members  []Member
	Filename *string
	State    PlayerState
}

type RemovalOutcome uint8

const (
	OutcomeMemberLeft RemovalOutcome = iota
	OutcomeHostLeft
	OutcomeRoomNowEmpty
)

// RemoveMemberResult carries the remaining membership as it was the moment
// the member was removed. For OutcomeHostLeft and OutcomeRoomNowEmpty the
// room is already gone by the time the caller sees this.
type RemoveMemberResult struct {
	Outcome RemovalOutcome
	Members []Member
}
