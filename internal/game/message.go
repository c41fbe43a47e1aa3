package game

// Operation types carried in the "optype" field of every hall and room
// frame. The server echoes the optype of the request it is answering;
// unsolicited frames (match results, forfeit notices) carry their own.
const (
	OpHallReady    = "hall_ready"
	OpRoomReady    = "room_ready"
	OpMatchStart   = "match_start"
	OpMatchStop    = "match_stop"
	OpMatchSuccess = "match_success"
	OpPutChess     = "put_chess"
	OpChat         = "chat"
	OpUnknown      = "unknown"
)

// Message is the one JSON frame shape used on both WebSocket stages.
// Row, Col and Winner are pointers so a zero value still serialises:
// (0,0) is a legal board cell and winner 0 means "game continues", both
// of which clients must be able to see.
type Message struct {
	Optype  string  `json:"optype,omitempty"`
	Result  bool    `json:"result"`
	Reason  string  `json:"reason,omitempty"`
	RoomID  uint64  `json:"room_id,omitempty"`
	UserID  uint64  `json:"uid,omitempty"`
	WhiteID uint64  `json:"white_id,omitempty"`
	BlackID uint64  `json:"black_id,omitempty"`
	Row     *int    `json:"row,omitempty"`
	Col     *int    `json:"col,omitempty"`
	Winner  *uint64 `json:"winner,omitempty"`
	Message string  `json:"message,omitempty"`
}

func intPtr(v int) *int          { return &v }
func uint64Ptr(v uint64) *uint64 { return &v }
