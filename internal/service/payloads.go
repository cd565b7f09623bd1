package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"othello_server/internal/game"

	"github.com/go-playground/validator/v10"
)

// client → server

type JoinRoomRequest struct {
	Room     *string `json:"room" validate:"required"`
	Username *string `json:"username" validate:"required"`
}

// PeerRequest is the payload of invite, uninvite and game_start.
type PeerRequest struct {
	RequestedUser *string `json:"requested_user" validate:"required,min=1"`
}

type PlayTokenRequest struct {
	Row    *int    `json:"row" validate:"required,min=0,max=7"`
	Column *int    `json:"column" validate:"required,min=0,max=7"`
	Color  *string `json:"color" validate:"required"`
}

type ChatMessageRequest struct {
	Room     *string `json:"room" validate:"required"`
	Username *string `json:"username" validate:"required"`
	Message  *string `json:"message" validate:"required"`
}

// server → client

const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

type FailResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

type JoinRoomResponse struct {
	Result   string `json:"result"`
	SocketID string `json:"socket_id"`
	Room     string `json:"room"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// PeerResponse is sent for invite_response, invited and uninvited.
type PeerResponse struct {
	Result   string `json:"result"`
	SocketID string `json:"socket_id"`
}

type GameStartResponse struct {
	Result   string `json:"result"`
	GameID   string `json:"game_id"`
	SocketID string `json:"socket_id"`
}

type PlayTokenResponse struct {
	Result string `json:"result"`
}

type ChatMessageResponse struct {
	Result   string `json:"result"`
	Username string `json:"username"`
	Room     string `json:"room"`
	Message  string `json:"message"`
}

type GameUpdate struct {
	Result  string     `json:"result"`
	GameID  string     `json:"game_id"`
	Game    game.State `json:"game"`
	Message string     `json:"message"`
}

type GameOver struct {
	Result string     `json:"result"`
	GameID string     `json:"game_id"`
	Game   game.State `json:"game"`
	WhoWon string     `json:"who_won"`
}

type PlayerDisconnected struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Count    int    `json:"count"`
	SocketID string `json:"socket_id"`
}

const msgNoPayload = "client did not send a payload"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func payloadAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decode unmarshals raw into dst and validates it. The first failing field is
// reported using its entry in messages.
func decode(raw json.RawMessage, dst any, messages map[string]string) error {
	if payloadAbsent(raw) {
		return &ValidationError{Field: "payload", Message: msgNoPayload}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Field: "payload", Message: "client sent a malformed payload"}
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0].Field()
		msg, ok := messages[field]
		if !ok {
			msg = "client sent an invalid " + field
		}
		return &ValidationError{Field: field, Message: msg}
	}
	return &ValidationError{Field: "payload", Message: err.Error()}
}
