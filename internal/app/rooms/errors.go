package rooms

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrUserNotFound      = errors.New("user_not_found")
	ErrRoomNotFound      = errors.New("room_not_found")
	ErrRoomNameNotUnique = errors.New("room_name_not_unique")
	ErrUserAlreadyInRoom = errors.New("user_already_in_room")
	ErrUserNotInRoom     = errors.New("user_not_in_room")
	ErrNotRoomAdmin      = errors.New("not_room_admin")
	ErrUserNotPending    = errors.New("user_not_pending")
	ErrNotApprovedMember = errors.New("not_approved_member")
)
