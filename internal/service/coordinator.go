package service

import (
	"context"
	"log/slog"
	"time"

	"othello_server/internal/dependencies/clock"
	"othello_server/internal/domain"
	"othello_server/internal/game"
	"othello_server/internal/logger"
	"othello_server/internal/metrics"
)

// DefaultCleanupAfter is how long a finished game stays in the table.
const DefaultCleanupAfter = time.Hour

// Transport is the message layer the game runs on: named rooms of
// connections, targeted and room-wide delivery, and a membership query.
type Transport interface {
	Join(socketID, room string)
	Leave(socketID, room string)
	// Members returns the connections currently in room, in join order.
	Members(ctx context.Context, room string) ([]string, error)
	Emit(socketID, event string, payload any)
	BroadcastRoom(room, event string, payload any)
	BroadcastAll(event string, payload any)
}

// GameRecorder archives finished games.
type GameRecorder interface {
	Create(ctx context.Context, g *domain.FinishedGame) error
}

type CoordinatorConfig struct {
	CleanupAfter time.Duration
	Recorder     GameRecorder
	Clock        clock.Clock
	Logger       *slog.Logger
}

// Coordinator aligns transport room membership with game seating.
type Coordinator struct {
	transport    Transport
	registry     *Registry
	table        *game.Table
	recorder     GameRecorder
	clock        clock.Clock
	cleanupAfter time.Duration
	log          *slog.Logger
}

func NewCoordinator(transport Transport, registry *Registry, table *game.Table, cfg CoordinatorConfig) *Coordinator {
	if cfg.CleanupAfter <= 0 {
		cfg.CleanupAfter = DefaultCleanupAfter
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	c := &Coordinator{
		transport:    transport,
		registry:     registry,
		table:        table,
		recorder:     cfg.Recorder,
		clock:        cfg.Clock,
		cleanupAfter: cfg.CleanupAfter,
		log:          cfg.Logger.With("component", "coordinator"),
	}
	table.OnEvict = func(id string) {
		metrics.GamesCleanedUp.Inc()
		metrics.GamesActive.Set(float64(table.Len()))
		c.log.Info("finished game removed", "game_id", id)
	}
	return c
}

// Reconcile makes sure a session exists for gameID, seats unseated room
// members, evicts members beyond the two seats, broadcasts the game state
// and handles completion.
//
// The membership query is the only point where other events can interleave.
// Everything read before it is treated as a snapshot: the session is looked
// up again afterwards and seats are taken with TakeSeat, which never
// overwrites an occupied seat.
func (c *Coordinator) Reconcile(ctx context.Context, gameID, message string) error {
	if _, created := c.table.Ensure(gameID, c.clock.Now()); created {
		metrics.GamesCreated.Inc()
		metrics.GamesActive.Set(float64(c.table.Len()))
		c.log.Info("created game", "game_id", gameID)
	}

	members, err := c.transport.Members(ctx, gameID)
	if err != nil {
		c.log.Error("membership query failed", "game_id", gameID, "error", err)
		return err
	}

	session, ok := c.table.Get(gameID)
	if !ok {
		c.log.Warn("game removed during reconciliation", "game_id", gameID)
		return ErrNoGame
	}

	present := 0
	seen := make(map[string]struct{}, len(members))
	for _, socketID := range members {
		if _, dup := seen[socketID]; dup {
			continue
		}
		seen[socketID] = struct{}{}

		player, ok := c.registry.Lookup(socketID)
		if !ok {
			// still inside its own join_room; that join reconciles it
			c.log.Debug("skipping unregistered member", "game_id", gameID, "socket_id", socketID)
			present++
			continue
		}

		switch res := session.TakeSeat(socketID, player.Username); res {
		case game.SeatedWhite, game.SeatedBlack:
			c.log.Info("seat assigned", "game_id", gameID, "socket_id", socketID, "color", res.String())
			present++
		case game.AlreadySeated:
			present++
		case game.NoSeat:
			c.log.Info("evicting member from full game", "game_id", gameID, "socket_id", socketID)
			metrics.SeatEvictions.Inc()
			c.transport.Leave(socketID, gameID)
			c.registry.ClearRoom(socketID, gameID)
		}
	}

	if present >= 2 {
		c.transport.BroadcastRoom(gameID, "game_update", GameUpdate{
			Result:  ResultSuccess,
			GameID:  gameID,
			Game:    session.State(),
			Message: message,
		})
	}

	c.checkFinished(gameID, session)
	return nil
}

// checkFinished announces game_over the first time the board is seen full.
// Later reconciliations of a finished game push its cleanup back.
func (c *Coordinator) checkFinished(gameID string, session *game.Session) {
	if !session.Finish() {
		if session.Finished() {
			c.table.ScheduleCleanup(gameID, c.cleanupAfter)
		}
		return
	}

	state := session.State()
	whoWon := state.Board.Leader()
	c.transport.BroadcastRoom(gameID, "game_over", GameOver{
		Result: ResultSuccess,
		GameID: gameID,
		Game:   state,
		WhoWon: whoWon,
	})
	c.table.ScheduleCleanup(gameID, c.cleanupAfter)
	metrics.GamesFinished.Inc()
	c.log.Info("game over", "game_id", gameID, "who_won", whoWon)

	c.record(gameID, state, whoWon)
}

func (c *Coordinator) record(gameID string, state game.State, whoWon string) {
	if c.recorder == nil {
		return
	}

	fg := &domain.FinishedGame{
		GameID:        gameID,
		WhiteSocket:   state.PlayerWhite.Socket,
		WhiteUsername: state.PlayerWhite.Username,
		BlackSocket:   state.PlayerBlack.Socket,
		BlackUsername: state.PlayerBlack.Username,
		WhiteDiscs:    state.Board.Count(game.White),
		BlackDiscs:    state.Board.Count(game.Black),
		WhoWon:        whoWon,
		LastMoveAt:    time.UnixMilli(state.LastMoveTime),
	}
	for r := 0; r < game.Size; r++ {
		for col := 0; col < game.Size; col++ {
			fg.Board[r][col] = string(state.Board[r][col])
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.recorder.Create(ctx, fg); err != nil {
			c.log.Error("archiving finished game failed", "game_id", gameID, "error", err)
		}
	}()
}
