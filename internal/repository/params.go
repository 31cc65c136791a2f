package repository

import "time"

type CreateRoomParams struct {
	Code         string
	HostID       string
	HostUsername string
}

type AddMemberParams struct {
	Code      string
	SessionID string
	Username  string
}

type RemoveMemberParams struct {
	Code      string
	SessionID string
}

type UpdateVideoParams struct {
	Code     string
	Filename string
}

type UpdatePlayerStateParams struct {
	Code string
	// Playing replaces the stored flag when non-nil, otherwise the flag
	// keeps its prior value.
	Playing *bool
	Time    float64
	// Authoritative updates (play/pause edges) are always forwarded;
	// anything else honors the Window since the last forward.
	Authoritative bool
	Window        time.Duration
	Now           time.Time
}
