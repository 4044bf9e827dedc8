// Package simulate synthesizes update traffic against a live scheduler, for
// demoing and load-testing without a real bot API in front of it. Grounded
// on the source's mock.Generator: a fixed cast of actors, each following a
// named cadence pattern, advanced on a shared ticker.
package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/agent-racer/botsched/internal/update"
)

// Target is the subset of *scheduler.Scheduler the generator drives.
type Target interface {
	HandleMessage(m *update.Message)
	HandleCallbackQuery(q *update.CallbackQuery)
}

// Pattern names a synthetic traffic cadence.
type Pattern string

const (
	// PatternSteady sends a message on every tick.
	PatternSteady Pattern = "steady"
	// PatternBurst sends messages for 3 ticks out of every 8, then pauses.
	PatternBurst Pattern = "burst"
	// PatternStall sends messages for 4 ticks out of every 10, then goes
	// quiet, mirroring a user who wanders off mid-conversation.
	PatternStall Pattern = "stall"
)

type actor struct {
	userID       int64
	chatID       int64
	pattern      Pattern
	messagesSent int
}

// Generator drives a fixed cast of synthetic actors against a Target.
type Generator struct {
	target Target
	actors []*actor
}

// NewGenerator builds a generator with a small cast covering all three
// patterns. The cast size is fixed; callers who need more load should run
// several Generators concurrently rather than mutate this one's actor list.
func NewGenerator(target Target) *Generator {
	return &Generator{
		target: target,
		actors: []*actor{
			{userID: 1001, chatID: 1, pattern: PatternSteady},
			{userID: 1002, chatID: 2, pattern: PatternBurst},
			{userID: 1003, chatID: 3, pattern: PatternStall},
			{userID: 1004, chatID: 1, pattern: PatternSteady},
		},
	}
}

// Start launches the generator's tick loop in its own goroutine. It returns
// immediately; cancel ctx to stop.
func (g *Generator) Start(ctx context.Context, interval time.Duration) {
	go g.run(ctx, interval)
}

func (g *Generator) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			for _, a := range g.actors {
				g.advance(a, tick)
			}
		}
	}
}

func (g *Generator) advance(a *actor, tick int) {
	switch a.pattern {
	case PatternBurst:
		if tick%8 >= 3 {
			return
		}
	case PatternStall:
		if tick%10 >= 4 {
			return
		}
	}

	a.messagesSent++
	text := fmt.Sprintf("synthetic message %d from actor %d", a.messagesSent, a.userID)
	g.target.HandleMessage(&update.Message{
		ID:   int64(tick)*1000 + a.userID,
		From: update.User{ID: a.userID, Username: fmt.Sprintf("actor-%d", a.userID)},
		Chat: update.Chat{ID: a.chatID},
		Text: text,
	})

	if a.messagesSent%5 == 0 {
		g.target.HandleCallbackQuery(&update.CallbackQuery{
			ID:   fmt.Sprintf("cb-%d-%d", a.userID, a.messagesSent),
			From: update.User{ID: a.userID},
			Data: "ack:" + text,
		})
	}
}
