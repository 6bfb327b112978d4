package session

import "errors"

var (
	// ErrStateConflict means an action arrived for a session or room that is
	// not in the state the action requires
	ErrStateConflict = errors.New("action not valid in current state")

	// ErrAlreadyPlaying means the user already holds an active game session
	ErrAlreadyPlaying = errors.New("user already has an active game")

	// ErrSeatedElsewhere means the user is seated in another baccarat room
	ErrSeatedElsewhere = errors.New("user is seated in another room")

	// ErrRoomExists means the channel already hosts a baccarat room
	ErrRoomExists = errors.New("channel already has an open room")

	// ErrNotHost means a host-only room action came from another user
	ErrNotHost = errors.New("only the host may do that")

	// ErrRoomFull means the room reached its bettor capacity
	ErrRoomFull = errors.New("room is full")

	// ErrBetTooSmall means the bet is below the table minimum
	ErrBetTooSmall = errors.New("bet is below the table minimum")

	// ErrNoBet means the user has no open bet to cancel
	ErrNoBet = errors.New("no open bet to cancel")

	// ErrSettlementFailed means the payout could not be written; the stake
	// debit was compensated with a refund before the error surfaced
	ErrSettlementFailed = errors.New("settlement failed, stake refunded")
)
