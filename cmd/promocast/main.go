package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopdesk/promocast/broadcast"
	"github.com/shopdesk/promocast/config"
	"github.com/shopdesk/promocast/gateway"
	"github.com/shopdesk/promocast/schedule"
	"github.com/shopdesk/promocast/tg"
)

type imageList []string

func (l *imageList) String() string { return strings.Join(*l, ",") }

func (l *imageList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	text        = flag.String("text", "", "Message text (mutually exclusive with promotion flags)")
	title       = flag.String("title", "", "Promotion title")
	description = flag.String("description", "", "Promotion description")
	price       = flag.Float64("price", 0, "Promotion price")
	oldPrice    = flag.Float64("old-price", 0, "Pre-discount price (rendered struck through)")
	parseMode   = flag.String("parse-mode", "", "Parse mode: HTML, Markdown, MarkdownV2 (default HTML)")
	departments = flag.String("departments", "", "Comma-separated department ids (default: all)")
	due         = flag.String("due", "", "Defer delivery until this RFC3339 time")
	roster      = flag.String("roster", "", "Department roster file (overrides PROMOCAST_ROSTER_PATH)")
	images      imageList
)

func main() {
	flag.Var(&images, "image", "Image URL, repeatable")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		logger.Error("broadcast failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if *roster != "" {
		cfg.RosterPath = *roster
	}

	msg, err := buildMessage()
	if err != nil {
		return err
	}

	targets, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}
	targets = selectTargets(targets, *departments)

	caller, closeCaller, err := buildCaller(cfg.Gateway, logger)
	if err != nil {
		return err
	}
	defer closeCaller()

	sender := broadcast.NewSender(caller, broadcast.WithLogger(logger))

	var result *broadcast.BatchResult
	if *due != "" {
		dueAt, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("parse -due: %w", err)
		}
		result, err = scheduleAll(ctx, cfg, sender, logger, targets, msg, dueAt)
		if err != nil {
			return err
		}
	} else {
		dispatcher := broadcast.NewDispatcher(sender, broadcast.WithLogger(logger))
		result, err = dispatcher.Dispatch(ctx, msg, targets)
		if err != nil {
			return err
		}
	}

	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Scheduled:
			fmt.Printf("scheduled\t%s\n", outcome.Name)
		case outcome.OK:
			fmt.Printf("ok\t%s\n", outcome.Name)
		default:
			fmt.Printf("failed\t%s\t%s\n", outcome.Name, outcome.Err)
		}
	}
	fmt.Println(result.Summary())
	return nil
}

func buildMessage() (broadcast.Message, error) {
	mode := tg.ParseMode(*parseMode)
	if *parseMode != "" && !mode.IsValid() {
		return broadcast.Message{}, tg.NewValidationError("parse-mode", "must be HTML, Markdown, or MarkdownV2")
	}

	if *title != "" {
		promo := broadcast.Promotion{
			Title:       *title,
			Description: *description,
			Price:       *price,
			OldPrice:    *oldPrice,
			Images:      images,
		}
		msg := promo.Render()
		if *parseMode != "" {
			msg.ParseMode = mode
		}
		return msg, nil
	}

	if *text == "" {
		return broadcast.Message{}, tg.NewValidationError("text", "either -text or -title is required")
	}
	return broadcast.Message{Text: *text, Images: images, ParseMode: mode}, nil
}

// selectTargets filters the roster down to the requested department ids.
// An empty selection means every department.
func selectTargets(all []broadcast.Target, selection string) []broadcast.Target {
	if selection == "" {
		return all
	}
	wanted := make(map[string]bool)
	for _, id := range strings.Split(selection, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	var out []broadcast.Target
	for _, t := range all {
		if wanted[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func buildCaller(cfg gateway.Config, logger *slog.Logger) (gateway.Caller, func(), error) {
	if cfg.UsesRelay() {
		gw, err := gateway.NewRelay(cfg, gateway.WithRelayLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	}
	gw, err := gateway.NewBotFromConfig(cfg, gateway.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return gw, func() { _ = gw.Close() }, nil
}

func scheduleAll(ctx context.Context, cfg *config.Config, sender *broadcast.Sender, logger *slog.Logger, targets []broadcast.Target, msg broadcast.Message, dueAt time.Time) (*broadcast.BatchResult, error) {
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sched := schedule.NewScheduler(store, sender,
		schedule.WithLogger(logger),
		schedule.WithHorizon(cfg.ScheduleHorizon))
	defer sched.Close()

	result, err := sched.ScheduleBatch(ctx, targets, msg, dueAt)
	if err != nil {
		return nil, err
	}

	// Timers only fire while this process lives; within the horizon we
	// stay up until the due time passes.
	if wait := time.Until(dueAt); wait > 0 && wait <= cfg.ScheduleHorizon {
		logger.Info("waiting for scheduled delivery", "due_at", dueAt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait + 5*time.Second):
		}
	}
	return result, nil
}
