package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a user or game id. Browsers send these either as JSON numbers or
// as numeric strings taken from input fields; both decode.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", s, err)
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", n, err)
	}
	*id = ID(v)
	return nil
}

// Token is the shared static token, sent as a number or a string.
type Token string

func (t *Token) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Token(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Token(n.String())
	return nil
}

type Action struct {
	Down      string `json:"down,omitempty"`
	Secondary string `json:"secondary,omitempty"`
}

// Inbound is any client to server message. Exactly one intent field is
// expected to be set.
type Inbound struct {
	Create     *ID     `json:"create,omitempty"`
	Seed       *ID     `json:"seed,omitempty"`
	Join       *ID     `json:"join,omitempty"`
	GameID     *ID     `json:"gameid,omitempty"`
	Action     *Action `json:"action,omitempty"`
	UserID     *ID     `json:"userid,omitempty"`
	NewSeed    *ID     `json:"newseed,omitempty"`
	Reconnect  *ID     `json:"reconnect,omitempty"`
	Disconnect *ID     `json:"disconnect,omitempty"`
	Token      *Token  `json:"_id,omitempty"`
}

type Intent uint8

const (
	IntentNone Intent = iota
	IntentCreate
	IntentJoin
	IntentAction
	IntentNewSeed
	IntentReconnect
	IntentDisconnect
)

func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentJoin:
		return "join"
	case IntentAction:
		return "action"
	case IntentNewSeed:
		return "newseed"
	case IntentReconnect:
		return "reconnect"
	case IntentDisconnect:
		return "disconnect"
	default:
		return "none"
	}
}

// Intent picks the message's purpose by the first intent field present.
func (m Inbound) Intent() Intent {
	switch {
	case m.Create != nil:
		return IntentCreate
	case m.Join != nil:
		return IntentJoin
	case m.Action != nil:
		return IntentAction
	case m.NewSeed != nil:
		return IntentNewSeed
	case m.Reconnect != nil:
		return IntentReconnect
	case m.Disconnect != nil:
		return IntentDisconnect
	default:
		return IntentNone
	}
}

// Outbound is any server to client message.
type Outbound struct {
	GameID    int64  `json:"gameid,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	Down      string `json:"down,omitempty"`
	Secondary int    `json:"secondary,omitempty"`
	NoSession int    `json:"nosession,omitempty"`
	Error     string `json:"error,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

// IDPtr is a convenience for building Inbound messages.
func IDPtr(v int64) *ID {
	return ptr(ID(v))
}

func TokenPtr(v string) *Token {
	return ptr(Token(v))
}
