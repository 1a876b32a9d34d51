package ws

import (
	"encoding/json"

	"github.com/windoze95/saltybytes-discover/internal/browse"
)

// Message types of the session view stream.
const (
	MsgTypeConnected    = "connected"     // Connection confirmed
	MsgTypeView         = "view"          // Screen snapshot after any change
	MsgTypeSimilar      = "similar"       // Similar recipes modal snapshot
	MsgTypeError        = "error"         // Error for the sending client only
	MsgTypeSubmitQuery  = "submit_query"  // Client submits a search
	MsgTypeGoToPage     = "go_to_page"    // Client changes page
	MsgTypeReset        = "reset"         // Client returns to the query form
	MsgTypeOpenSimilar  = "open_similar"  // Client opens a similar recipes modal
	MsgTypeCloseSimilar = "close_similar" // Client closes a similar recipes modal
)

// WSMessage is the envelope for all messages on the view stream.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectedPayload confirms a successful connection and carries the
// current view.
type ConnectedPayload struct {
	SessionID string      `json:"session_id"`
	View      browse.View `json:"view"`
}

// GoToPagePayload asks for a page of the current results.
type GoToPagePayload struct {
	Page int `json:"page"`
}

// SimilarPayload names the recipe whose modal is opened or closed.
type SimilarPayload struct {
	RecipeID int64 `json:"recipe_id"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// encode wraps payload in an envelope of the given type.
func encode(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, Payload: raw})
}
