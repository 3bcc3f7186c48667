package httpdto

import (
	"time"

	"askroom/internal/domain/room"
)

type CreateRoomRequest struct {
	RoomName string `json:"roomName" binding:"required"`
}

type RoomResponse struct {
	ID        string    `json:"id"`
	RoomName  string    `json:"roomName"`
	AdminID   string    `json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromRoom(rm room.Room) RoomResponse {
	return RoomResponse{
		ID:        rm.Code,
		RoomName:  rm.RoomName,
		AdminID:   rm.AdminID.String(),
		CreatedAt: rm.CreatedAt,
	}
}

func FromRoomSlice(rooms []room.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, FromRoom(rm))
	}
	return out
}
