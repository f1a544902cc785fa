package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/archive"
	"github.com/mealtrace/mealtrace-bot/internal/assoc"
	"github.com/mealtrace/mealtrace-bot/internal/convstate"
	"github.com/mealtrace/mealtrace-bot/internal/correction"
	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/leaderboard"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/vision"
)

// Handler reacts to inbound chat events. Each event runs independently;
// failures end in a user-visible message or a log line, never a crash of
// the event loop.
type Handler struct {
	transport Transport
	vision    vision.Analyzer
	ledger    *ledger.Ledger
	goals     *goals.Service
	assoc     *assoc.Index
	engine    *correction.Engine
	dialogs   convstate.Store
	archive   *archive.PhotoArchive
	names     *NameRegistry
	board     *leaderboard.Service
}

// NewHandler wires up the bot event handler.
func NewHandler(
	transport Transport,
	analyzer vision.Analyzer,
	l *ledger.Ledger,
	g *goals.Service,
	idx *assoc.Index,
	engine *correction.Engine,
	dialogs convstate.Store,
	photoArchive *archive.PhotoArchive,
	names *NameRegistry,
	board *leaderboard.Service,
) *Handler {
	return &Handler{
		transport: transport,
		vision:    analyzer,
		ledger:    l,
		goals:     g,
		assoc:     idx,
		engine:    engine,
		dialogs:   dialogs,
		archive:   photoArchive,
		names:     names,
		board:     board,
	}
}

// HandlePhoto runs the analysis flow: vision call, ledger append, outbound
// report, association record.
func (h *Handler) HandlePhoto(ctx context.Context, ev PhotoEvent) {
	h.names.Observe(ctx, ev.Scope, ev.ScopeName)

	if h.archive.Enabled() {
		if _, err := h.archive.Store(ctx, ev.Scope, ev.Image); err != nil {
			log.Printf("photo archive failed for scope %s: %v", ev.Scope, err)
		}
	}

	entry, err := h.vision.Analyze(ctx, ev.Image, ev.Caption)
	if err != nil {
		log.Printf("vision analysis failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't analyze that photo. Please try again.", ev.MessageID)
		return
	}

	date := models.LedgerDate(time.Now())
	appended, err := h.ledger.Append(ctx, ev.Scope, date, entry)
	if err != nil {
		log.Printf("ledger append failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't save that entry. Please try again.", ev.MessageID)
		return
	}

	totals, err := h.ledger.Aggregate(ctx, ev.Scope, date)
	if err != nil {
		log.Printf("aggregate failed for scope %s: %v", ev.Scope, err)
	}

	text := formatAnalysis(appended, totals, h.goals.Get(ctx, ev.Scope))
	outID, err := h.transport.Send(ctx, ev.Scope, text, ev.MessageID)
	if err != nil {
		log.Printf("send failed for scope %s: %v", ev.Scope, err)
		return
	}

	// Without the association a later reply simply reports "no original
	// analysis found"; the entry itself is already safe in the ledger.
	if err := h.assoc.Record(ctx, outID, ev.Scope, appended); err != nil {
		log.Printf("association record failed for message %s: %v", outID, err)
	}
}

// HandleText dispatches an inbound text event: replies go to the correction
// engine, commands to the command table, everything else to the dialog
// state machine.
func (h *Handler) HandleText(ctx context.Context, ev TextEvent) {
	h.names.Observe(ctx, ev.Scope, ev.ScopeName)

	if ev.ReplyTo != "" {
		h.handleReply(ctx, ev)
		return
	}

	if strings.HasPrefix(ev.Text, "/") {
		h.handleCommand(ctx, ev)
		return
	}

	h.handleDialog(ctx, ev)
}

// handleReply runs the correction/removal subsystem for a reply to one of
// our analysis messages. Internal errors are swallowed after logging so a
// storage hiccup cannot spam the chat.
func (h *Handler) handleReply(ctx context.Context, ev TextEvent) {
	result, err := h.engine.HandleReply(ctx, ev.Scope, ev.ReplyTo, ev.Text)
	if err != nil {
		log.Printf("reply handling failed for scope %s: %v", ev.Scope, err)
		return
	}

	switch result.Status {
	case correction.StatusRemoved:
		h.send(ctx, ev.Scope, formatRemoval(result.Entry, result.Totals, h.goals.Get(ctx, ev.Scope)), ev.MessageID)
	case correction.StatusUpdated:
		goalsNow := h.goals.Get(ctx, ev.Scope)
		h.send(ctx, ev.Scope, formatCorrection(result.Entry, result.Totals, goalsNow), ev.MessageID)
		edited := formatAnalysis(result.Entry, result.Totals, goalsNow)
		if err := h.transport.Edit(ctx, ev.Scope, ev.ReplyTo, edited); err != nil {
			log.Printf("edit failed for message %s: %v", ev.ReplyTo, err)
		}
	case correction.StatusNoAssociation:
		if correction.IsRemoval(ev.Text) {
			h.send(ctx, ev.Scope, "There's nothing to remove for that message.", ev.MessageID)
		} else {
			h.send(ctx, ev.Scope, "I couldn't find the original analysis for that message.", ev.MessageID)
		}
	case correction.StatusEntryMissing:
		h.send(ctx, ev.Scope, "I couldn't locate that entry anymore. It may already be removed.", ev.MessageID)
	default:
		h.send(ctx, ev.Scope, "Something went wrong. Please try again.", ev.MessageID)
	}
}

// send logs instead of erroring; an undeliverable message must not take
// down the handler.
func (h *Handler) send(ctx context.Context, scope, text, replyTo string) {
	if _, err := h.transport.Send(ctx, scope, text, replyTo); err != nil {
		log.Printf("send failed for scope %s: %v", scope, err)
	}
}
