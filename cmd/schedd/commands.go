package main

import (
	"log"

	"github.com/agent-racer/botsched/internal/await"
	"github.com/agent-racer/botsched/internal/bot"
	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/update"
)

// registerCommands wires up the example command coroutines shipped with
// schedd. Real deployments register their own via b.HandleCommand.
func registerCommands(b *bot.Bot) {
	b.HandleCommand("/start", startCommand)
	b.HandleCommand("/echo", echoCommand)
}

// startCommand demonstrates a multi-turn conversation: it logs the /start,
// then waits for exactly one follow-up message from that same user and
// logs it before completing.
func startCommand(h *coro.Handle, m *update.Message) error {
	log.Printf("session for user %d: /start received", m.From.ID)

	reply, err := await.WaitForUser(m.From.ID).Await(h)
	if err != nil {
		return err
	}
	log.Printf("session for user %d: follow-up %q", m.From.ID, reply.Text)
	return nil
}

// echoCommand demonstrates a single-shot command: it logs the full message
// text and completes without suspending.
func echoCommand(h *coro.Handle, m *update.Message) error {
	log.Printf("session for user %d: /echo %q", m.From.ID, m.Text)
	return nil
}
