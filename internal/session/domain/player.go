package domain

const (
	NicknameMinLength = 3
	NicknameMaxLength = 15
)

// Player is an identity within one session. Nicknames are unique per
// session; every player owns exactly one village, created on join.
type Player struct {
	ID        string
	SessionID string
	Nickname  string
	VillageID string

	// Points is the final score, stamped at session end.
	Points int
}

func ValidNickname(nickname string) bool {
	return len(nickname) >= NicknameMinLength && len(nickname) <= NicknameMaxLength
}
