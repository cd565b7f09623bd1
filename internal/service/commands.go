package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"othello_server/internal/dependencies/clock"
	"othello_server/internal/dependencies/random"
	"othello_server/internal/game"
	"othello_server/internal/logger"
	"othello_server/internal/metrics"
)

// DefaultLobby is the room that never hosts a game.
const DefaultLobby = "Lobby"

// maxGameID bounds the random part of generated game identifiers.
const maxGameID = 0x100000

// responseEvents maps each inbound event to the event its replies use.
var responseEvents = map[string]string{
	"join_room":         "join_room_response",
	"invite":            "invite_response",
	"uninvite":          "uninvited",
	"game_start":        "game_start_response",
	"play_token":        "play_token_response",
	"send_chat_message": "send_chat_message_response",
}

// Limiter throttles inbound events per connection.
type Limiter interface {
	Allow(ctx context.Context, ident string) (bool, error)
}

type CommandsConfig struct {
	Lobby         string
	BroadcastLogs bool
	Limiter       Limiter
	Random        random.Random
	Clock         clock.Clock
	Logger        *slog.Logger
}

// Commands handles inbound events from connections.
type Commands struct {
	transport     Transport
	registry      *Registry
	table         *game.Table
	coord         *Coordinator
	lobby         string
	broadcastLogs bool
	limiter       Limiter
	random        random.Random
	clock         clock.Clock
	log           *slog.Logger
}

func NewCommands(transport Transport, registry *Registry, table *game.Table, coord *Coordinator, cfg CommandsConfig) *Commands {
	if cfg.Lobby == "" {
		cfg.Lobby = DefaultLobby
	}
	if cfg.Random == nil {
		cfg.Random = random.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	return &Commands{
		transport:     transport,
		registry:      registry,
		table:         table,
		coord:         coord,
		lobby:         cfg.Lobby,
		broadcastLogs: cfg.BroadcastLogs,
		limiter:       cfg.Limiter,
		random:        cfg.Random,
		clock:         cfg.Clock,
		log:           cfg.Logger.With("component", "commands"),
	}
}

// HandleConnect is called once a connection is accepted.
func (c *Commands) HandleConnect(ctx context.Context, socketID string) {
	c.serverLog("a page connected to the server: " + socketID)
}

// HandleEvent routes one inbound event. Unknown events are logged and dropped.
func (c *Commands) HandleEvent(ctx context.Context, socketID, event string, payload json.RawMessage) {
	c.serverLog("Server received a command", "'"+event+"'", string(payload))

	respEvent, known := responseEvents[event]
	if !known {
		c.log.Warn("unknown event", "event", event, "socket_id", socketID)
		metrics.EventsTotal.WithLabelValues("unknown", ResultFail).Inc()
		return
	}

	if !c.allow(ctx, socketID) {
		c.fail(socketID, event, respEvent, ErrRateLimited.Error())
		return
	}

	switch event {
	case "join_room":
		c.joinRoom(ctx, socketID, payload)
	case "invite":
		c.invite(ctx, socketID, payload)
	case "uninvite":
		c.uninvite(ctx, socketID, payload)
	case "game_start":
		c.gameStart(ctx, socketID, payload)
	case "play_token":
		c.playToken(ctx, socketID, payload)
	case "send_chat_message":
		c.sendChatMessage(ctx, socketID, payload)
	}
}

// HandleDisconnect drops the registry entry and tells the room. The
// transport has already removed the connection from its rooms.
func (c *Commands) HandleDisconnect(ctx context.Context, socketID string) {
	c.serverLog("a page disconnected from the server: " + socketID)

	player, ok := c.registry.Remove(socketID)
	if !ok || player.Room == "" {
		return
	}

	count := 0
	if members, err := c.transport.Members(ctx, player.Room); err != nil {
		c.log.Warn("membership query failed on disconnect", "room", player.Room, "error", err)
	} else {
		count = len(members)
	}

	msg := PlayerDisconnected{
		Username: player.Username,
		Room:     player.Room,
		Count:    count,
		SocketID: socketID,
	}
	c.transport.BroadcastRoom(player.Room, "player_disconnected", msg)
	c.serverLog("player_disconnected succeeded", toJSON(msg))
}

func (c *Commands) allow(ctx context.Context, socketID string) bool {
	if c.limiter == nil {
		return true
	}
	ok, err := c.limiter.Allow(ctx, "event:"+socketID)
	if err != nil {
		// fail open
		c.log.Warn("rate limiter error", "error", err)
		return true
	}
	return ok
}

func (c *Commands) joinRoom(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "join_room", "join_room_response"

	var req JoinRoomRequest
	if err := decode(raw, &req, map[string]string{
		"room":     "client did not send a valid room to join",
		"username": "client did not send a valid username",
	}); err != nil {
		c.fail(socketID, event, respEvent, err.Error())
		return
	}
	room, username := *req.Room, *req.Username
	prev, registered := c.registry.Lookup(socketID)
	moving := registered && prev.Room != room

	c.transport.Join(socketID, room)

	members, err := c.transport.Members(ctx, room)
	if err != nil || !slices.Contains(members, socketID) {
		if err != nil {
			c.log.Error("membership query failed", "room", room, "error", err)
		}
		if !registered || moving {
			c.transport.Leave(socketID, room)
		}
		c.fail(socketID, event, respEvent, "Server internal error joining chat room")
		return
	}

	// a connection belongs to one room, and holds at most one seat, at a time
	if moving && prev.Room != "" {
		c.transport.Leave(socketID, prev.Room)
		if session, ok := c.table.Get(prev.Room); ok && session.Vacate(socketID) {
			c.log.Info("seat released", "game_id", prev.Room, "socket_id", socketID)
		}
	}
	c.registry.Register(socketID, username, room)
	c.succeed(event)

	// announce every current member so the newcomer learns the roster
	for _, member := range members {
		p, ok := c.registry.Lookup(member)
		if !ok {
			continue
		}
		resp := JoinRoomResponse{
			Result:   ResultSuccess,
			SocketID: member,
			Room:     p.Room,
			Username: p.Username,
			Count:    len(members),
		}
		c.transport.BroadcastRoom(room, respEvent, resp)
		c.serverLog("join_room succeeded", toJSON(resp))
	}

	if room != c.lobby {
		if err := c.coord.Reconcile(ctx, room, "initial update"); err != nil {
			c.log.Warn("reconcile after join failed", "room", room, "error", err)
		}
	}
}

// peerContext is the shared front half of invite, uninvite and game_start:
// the requester must be registered with a room and a name, and the payload
// must name another connection.
func (c *Commands) peerContext(socketID string, raw json.RawMessage, messages map[string]string) (Player, string, error) {
	if payloadAbsent(raw) {
		return Player{}, "", &ValidationError{Field: "payload", Message: msgNoPayload}
	}
	player, ok := c.registry.Lookup(socketID)
	if !ok {
		return Player{}, "", ErrNotRegistered
	}

	var req PeerRequest
	if err := decode(raw, &req, messages); err != nil {
		return Player{}, "", err
	}
	if player.Room == "" {
		return Player{}, "", &ValidationError{Field: "room", Message: messages["room"]}
	}
	if player.Username == "" {
		return Player{}, "", &ValidationError{Field: "username", Message: messages["username"]}
	}
	return player, *req.RequestedUser, nil
}

// peerPresent returns ErrNotInRoom unless requested is currently in room.
func (c *Commands) peerPresent(ctx context.Context, room, requested string) error {
	members, err := c.transport.Members(ctx, room)
	if err != nil {
		c.log.Error("membership query failed", "room", room, "error", err)
		return err
	}
	if !slices.Contains(members, requested) {
		return ErrNotInRoom
	}
	return nil
}

func (c *Commands) invite(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "invite", "invite_response"

	player, requested, err := c.peerContext(socketID, raw, map[string]string{
		"requested_user": "client did not request a valid user to invite to play",
		"room":           "the user that was invited is not in a room",
		"username":       "the user that was invited does not have a name registered",
	})
	if err != nil {
		c.fail(socketID, event, respEvent, c.describe(err, "invite"))
		return
	}

	c.transport.Join(socketID, player.Room)

	if err := c.peerPresent(ctx, player.Room, requested); err != nil {
		c.fail(socketID, event, respEvent, "the user that was invited is no longer in the room")
		return
	}

	c.transport.Emit(socketID, respEvent, PeerResponse{Result: ResultSuccess, SocketID: requested})
	resp := PeerResponse{Result: ResultSuccess, SocketID: socketID}
	c.transport.Emit(requested, "invited", resp)
	c.succeed(event)
	c.serverLog("invite command success", toJSON(resp))
}

func (c *Commands) uninvite(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "uninvite", "uninvited"

	player, requested, err := c.peerContext(socketID, raw, map[string]string{
		"requested_user": "client did not request a valid user to uninvite",
		"room":           "the user that was uninvited is not in a room",
		"username":       "the user that was uninvited does not have a name registered",
	})
	if err != nil {
		c.fail(socketID, event, respEvent, c.describe(err, "uninvite"))
		return
	}

	if err := c.peerPresent(ctx, player.Room, requested); err != nil {
		c.fail(socketID, event, respEvent, "the user that was uninvited is no longer in the room")
		return
	}

	c.transport.Emit(socketID, respEvent, PeerResponse{Result: ResultSuccess, SocketID: requested})
	resp := PeerResponse{Result: ResultSuccess, SocketID: socketID}
	c.transport.Emit(requested, respEvent, resp)
	c.succeed(event)
	c.serverLog("uninvite command success", toJSON(resp))
}

func (c *Commands) gameStart(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "game_start", "game_start_response"

	player, requested, err := c.peerContext(socketID, raw, map[string]string{
		"requested_user": "client did not request a valid user to engage in play",
		"room":           "the user that was engaged to play is not in a room",
		"username":       "the user that was engaged to play does not have a name registered",
	})
	if err != nil {
		c.fail(socketID, event, respEvent, c.describe(err, "game_start"))
		return
	}

	if err := c.peerPresent(ctx, player.Room, requested); err != nil {
		c.fail(socketID, event, respEvent, "the user that was engaged to play is no longer in the room")
		return
	}

	resp := GameStartResponse{
		Result:   ResultSuccess,
		GameID:   c.newGameID(),
		SocketID: requested,
	}
	c.transport.Emit(socketID, respEvent, resp)
	c.transport.Emit(requested, respEvent, resp)
	c.succeed(event)
	c.serverLog("game_start command success", toJSON(resp))
}

func (c *Commands) playToken(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "play_token", "play_token_response"

	if payloadAbsent(raw) {
		c.fail(socketID, event, respEvent, msgNoPayload)
		return
	}
	player, ok := c.registry.Lookup(socketID)
	if !ok {
		c.fail(socketID, event, respEvent, "play_token came from an unregistered player")
		return
	}

	var req PlayTokenRequest
	if err := decode(raw, &req, map[string]string{
		"row":    "there was no valid row associated with the play_token command",
		"column": "there was no valid column associated with the play_token command",
		"color":  "there was no valid color associated with the play_token command",
	}); err != nil {
		c.fail(socketID, event, respEvent, err.Error())
		return
	}

	gameID := player.Room
	session, ok := c.table.Get(gameID)
	if !ok {
		c.fail(socketID, event, respEvent, "there was no valid game associated with the play_token command")
		return
	}

	err := session.Play(socketID, *req.Row, *req.Column, game.Color(*req.Color), c.clock.Now())
	switch {
	case err == nil:
	case errors.Is(err, game.ErrWrongTurn):
		c.fail(socketID, event, respEvent, "play_token played the wrong color. It's not their turn")
		return
	case errors.Is(err, game.ErrWrongPlayer):
		c.fail(socketID, event, respEvent, "play_token played the right color but by the wrong player")
		return
	case errors.Is(err, game.ErrCellOccupied):
		c.fail(socketID, event, respEvent, "play_token tried to play on an occupied cell")
		return
	default:
		c.fail(socketID, event, respEvent, "play_token was rejected: "+err.Error())
		return
	}

	c.transport.Emit(socketID, respEvent, PlayTokenResponse{Result: ResultSuccess})
	c.succeed(event)

	if err := c.coord.Reconcile(ctx, gameID, "played a token"); err != nil {
		c.log.Warn("reconcile after move failed", "game_id", gameID, "error", err)
	}
}

func (c *Commands) sendChatMessage(ctx context.Context, socketID string, raw json.RawMessage) {
	const event, respEvent = "send_chat_message", "send_chat_message_response"

	var req ChatMessageRequest
	if err := decode(raw, &req, map[string]string{
		"room":     "client did not send a valid room to message",
		"username": "client did not send a valid username as a message source",
		"message":  "client did not send a valid message",
	}); err != nil {
		c.fail(socketID, event, respEvent, err.Error())
		return
	}

	resp := ChatMessageResponse{
		Result:   ResultSuccess,
		Username: *req.Username,
		Room:     *req.Room,
		Message:  *req.Message,
	}
	c.transport.BroadcastRoom(resp.Room, respEvent, resp)
	c.succeed(event)
	c.serverLog("send_chat_message command succeeded", toJSON(resp))
}

// describe turns an error from the shared peer checks into client text.
func (c *Commands) describe(err error, command string) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrNotRegistered):
		return fmt.Sprintf("%s came from an unregistered player", command)
	default:
		return err.Error()
	}
}

func (c *Commands) fail(socketID, event, respEvent, message string) {
	resp := FailResponse{Result: ResultFail, Message: message}
	c.transport.Emit(socketID, respEvent, resp)
	metrics.EventsTotal.WithLabelValues(event, ResultFail).Inc()
	c.serverLog(event+" command failed", toJSON(resp))
}

func (c *Commands) succeed(event string) {
	metrics.EventsTotal.WithLabelValues(event, ResultSuccess).Inc()
}

// newGameID returns a lowercase hex id drawn from [1, 0x100000].
func (c *Commands) newGameID() string {
	return strconv.FormatInt(int64(1+c.random.Intn(maxGameID)), 16)
}

// serverLog writes lines to the server log and mirrors them to every
// connection as a "log" event.
func (c *Commands) serverLog(lines ...string) {
	for _, line := range lines {
		c.log.Info(line)
	}
	if !c.broadcastLogs {
		return
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, "**** Message from the server\n")
	for _, line := range lines {
		out = append(out, "****\t"+line)
	}
	c.transport.BroadcastAll("log", out)
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
