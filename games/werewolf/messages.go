package werewolf

// Inbound message types.
const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeStartGame  = "start_game"
)

// Outbound message types.
const (
	TypeRoomCreated  = "room_created"
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypeGameStarted  = "game_started"
	TypeYourRole     = "your_role"
	TypeError        = "error"
)

// ClientMessage is any message a client sends.
type ClientMessage struct {
	Type     string `json:"type"`                // "create_room", "join_room", "start_game"
	PlayerID string `json:"player_id,omitempty"` // stable client identity
	Name     string `json:"name,omitempty"`      // create_room / join_room
	Code     string `json:"code,omitempty"`      // join_room
}

// PlayerView is how a member appears in lists sent to clients. It never
// carries a role.
type PlayerView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomCreatedMessage struct {
	Type    string       `json:"type"` // "room_created"
	Code    string       `json:"code"`
	Players []PlayerView `json:"players"`
}

type PlayerJoinedMessage struct {
	Type    string       `json:"type"` // "player_joined"
	Name    string       `json:"name"`
	Players []PlayerView `json:"players"`
}

type PlayerLeftMessage struct {
	Type     string       `json:"type"` // "player_left"
	PlayerID string       `json:"player_id"`
	Players  []PlayerView `json:"players"`
}

// GameStartedMessage has no payload beyond its type.
type GameStartedMessage struct {
	Type string `json:"type"` // "game_started"
}

// YourRoleMessage is only ever sent to the player holding the role.
type YourRoleMessage struct {
	Type string `json:"type"` // "your_role"
	Role Role   `json:"role"`
}

// ErrorMessage goes to the client whose intent was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func playerViews(members []Player) []PlayerView {
	views := make([]PlayerView, 0, len(members))
	for _, p := range members {
		views = append(views, PlayerView{ID: p.ID, Name: p.Name})
	}
	return views
}
