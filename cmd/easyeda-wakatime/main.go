// Command easyeda-wakatime reports EasyEDA editing activity to a WakaTime-compatible backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tobycm/easyeda-wakatime/internal/activity"
	"github.com/tobycm/easyeda-wakatime/internal/config"
	"github.com/tobycm/easyeda-wakatime/internal/credentials"
	"github.com/tobycm/easyeda-wakatime/internal/heartbeat"
	"github.com/tobycm/easyeda-wakatime/internal/host"
	"github.com/tobycm/easyeda-wakatime/internal/journal"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/resolve"
	"github.com/tobycm/easyeda-wakatime/internal/scheduler"
	"github.com/tobycm/easyeda-wakatime/internal/status"
	"github.com/tobycm/easyeda-wakatime/internal/store"
	"github.com/tobycm/easyeda-wakatime/internal/wakatime"
	"github.com/tobycm/easyeda-wakatime/internal/watch"
	"github.com/tobycm/easyeda-wakatime/internal/web"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.3.0"

const (
	displayName = "EasyEDA Wakatime"
	description = "Track your EasyEDA design time with WakaTime."
	credits     = "Created by Andrew (radi8) <me@radi8.dev>"
)

// options are the one-shot actions selected on the command line.
type options struct {
	today      bool
	printState bool
	apiURL     string
	apiKey     string
	project    string
}

func (o options) settings() bool {
	return o.apiURL != "" || o.apiKey != "" || o.project != ""
}

func main() {
	configPath := flag.String("config", "", "Path to config.toml (default: search XDG and ~/.config)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	today := flag.Bool("today", false, "Print today's stats and exit")
	printState := flag.Bool("print-state", false, "Print stored settings and exit")
	apiURL := flag.String("set-api-url", "", "Store the WakaTime API URL and exit")
	apiKey := flag.String("set-api-key", "", "Store the WakaTime API key and exit")
	project := flag.String("set-project", "", "Store a fallback project name and exit")

	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	opts := options{
		today:      *today,
		printState: *printState,
		apiURL:     *apiURL,
		apiKey:     *apiKey,
		project:    *project,
	}
	if err := run(cfg, opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, opts options) error {
	db, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	switch {
	case opts.settings():
		return applySettings(db, opts, os.Stdout)
	case opts.printState:
		return printStoredState(db, os.Stdout)
	case opts.today:
		return printToday(context.Background(), db, wakatime.NewClient(), os.Stdout)
	}

	bridge, err := host.NewBridge(cfg.Host.Broker, cfg.Host.TopicPrefix)
	if err != nil {
		return fmt.Errorf("init host bridge: %w", err)
	}
	defer bridge.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		IntervalMs:   cfg.Interval.Milliseconds(),
		InactivityMs: cfg.InactivityTimeout.Milliseconds(),
		Broker:       cfg.Host.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		Journal:      len(cfg.Journal.Addresses) > 0,
	})
	tracker.SetMQTTConnected(bridge.IsConnected())

	if cfg.ThresholdBelowInterval() {
		log.Printf("warning: inactivity_timeout %v is shorter than interval %v; short bursts of activity may be missed",
			cfg.InactivityTimeout.Duration, cfg.Interval.Duration)
	}

	// Activation: one notice if credentials are missing, then fresh baselines.
	_, ok := credentials.Check(db, bridge)
	tracker.SetCredentials(ok)
	if err := heartbeat.ResetBaselines(db); err != nil {
		log.Printf("failed to reset baselines: %v", err)
	}

	var j journal.Journal = journal.Nop{}
	if len(cfg.Journal.Addresses) > 0 {
		es, err := journal.NewElastic(cfg.Journal.Addresses, cfg.Journal.Index)
		if err != nil {
			log.Printf("journal disabled: %v", err)
		} else {
			j = es
			log.Printf("journal: indexing to %s at %v", cfg.Journal.Index, cfg.Journal.Addresses)
		}
	}

	interactions := activity.NewSignal(time.Now)
	sched := newScheduler(cfg, bridge, db, interactions, wakatime.NewClient(), j, tracker, time.Now)
	if last, ok := sched.Restore(); ok {
		log.Printf("restored last interaction at %s", last.UTC().Format(time.RFC3339))
	}

	if err := bridge.OnInteraction(interactions.Record); err != nil {
		return fmt.Errorf("subscribe to editor events: %w", err)
	}

	if cfg.Watch.Dir != "" {
		w, err := watch.New(cfg.Watch.Dir, interactions.Record)
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			w.Start()
			defer w.Close()
			log.Printf("watching %s for changes", cfg.Watch.Dir)
		}
	}

	var live liveFeed
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		live = srv
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	publishStatus(bridge, tracker, "STARTUP", "", true)

	log.Printf("started: interval=%v inactivity=%v broker=%s", cfg.Interval.Duration, cfg.InactivityTimeout.Duration, cfg.Host.Broker)

	ticker := time.NewTicker(cfg.Interval.Duration)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sched, bridge, bridge, tracker, live, ticker.C, sigCh)
}

// newScheduler wires the heartbeat pipeline around an editor host.
func newScheduler(cfg config.Config, h host.Host, s store.Store, sig *activity.Signal, sender wakatime.Sender, j journal.Journal, tracker *status.Tracker, now func() time.Time) *scheduler.Scheduler {
	resolver := resolve.New(h, s)
	return &scheduler.Scheduler{
		Signal:   sig,
		Store:    s,
		Resolver: resolver,
		Assembler: &heartbeat.Assembler{
			Metrics:   resolver,
			Store:     s,
			Now:       now,
			UserAgent: heartbeat.UserAgent(cfg.EasyEDAVersion, version),
			OS:        heartbeat.DetectOS(),
		},
		Sender:    sender,
		Notifier:  h,
		Journal:   j,
		Tracker:   tracker,
		Threshold: cfg.InactivityTimeout.Duration,
		Now:       now,
	}
}

// tickRunner is the part of the scheduler runLoop drives.
type tickRunner interface {
	Tick(ctx context.Context) logic.TickOutcome
}

// liveFeed pushes the current status to connected browsers.
type liveFeed interface {
	Publish()
}

func runLoop(sched tickRunner, publisher host.StatusPublisher, conn host.ConnectionStatus, tracker *status.Tracker, live liveFeed, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if conn != nil {
				tracker.SetMQTTConnected(conn.IsConnected())
			}
			publishStatus(publisher, tracker, "SHUTDOWN", signalName, true)
			return nil

		case <-tick:
			outcome := sched.Tick(ctx)

			if conn != nil {
				tracker.SetMQTTConnected(conn.IsConnected())
			}
			if outcome == logic.TickSent {
				publishStatus(publisher, tracker, "HEARTBEAT", "", false)
			}
			if live != nil {
				live.Publish()
			}
		}
	}
}

func publishStatus(publisher host.StatusPublisher, tracker *status.Tracker, event, reason string, retained bool) {
	snap := tracker.Snapshot()
	err := publisher.PublishStatus(host.StatusEvent{
		Event:    event,
		Payload:  status.FormatStatusEvent(snap, event, reason),
		Retained: retained,
	})
	if err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	if event != "HEARTBEAT" {
		log.Printf("published %s event", event)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s v%s\n%s\n%s\n", displayName, version, description, credits)
}

// applySettings replaces the editor's settings panels: it stores whichever
// values were given on the command line.
func applySettings(s store.Store, opts options, w io.Writer) error {
	if err := credentials.Save(s, credentials.Credentials{APIURL: opts.apiURL, APIKey: opts.apiKey}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if opts.project != "" {
		if err := s.Set(store.KeyProjectName, opts.project); err != nil {
			return fmt.Errorf("save project name: %w", err)
		}
	}
	fmt.Fprintln(w, "Settings saved.")
	return nil
}

// maskKey hides an API key, keeping the last four characters only when the
// key is long enough that they do not give most of it away.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func printStoredState(s store.Store, w io.Writer) error {
	get := func(key string) string {
		v, ok, err := s.Get(key)
		if err != nil {
			return "error: " + err.Error()
		}
		if !ok || v == "" {
			return "(not set)"
		}
		return v
	}

	key, ok, err := s.Get(store.KeyAPIKey)
	switch {
	case err != nil:
		key = "error: " + err.Error()
	case !ok || key == "":
		key = "(not set)"
	default:
		key = maskKey(key)
	}
	last := get(store.KeyLastEventTime)
	if ms, err := strconv.ParseInt(last, 10, 64); err == nil {
		last = time.UnixMilli(ms).UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(w, "API URL: %s\n", get(store.KeyAPIURL))
	fmt.Fprintf(w, "API key: %s\n", key)
	fmt.Fprintf(w, "Project: %s\n", get(store.KeyProjectName))
	fmt.Fprintf(w, "Last interaction: %s\n", last)
	for _, e := range logic.TrackedEditors {
		fmt.Fprintf(w, "Previous %s count: %s\n", e, get(store.PreviousLinesKey(e)))
	}
	return nil
}

// todayClient fetches the daily summary.
type todayClient interface {
	Today(ctx context.Context, creds credentials.Credentials) (string, error)
}

func printToday(ctx context.Context, s store.Store, client todayClient, w io.Writer) error {
	creds, ok := credentials.Load(s)
	if !ok {
		return errors.New(credentials.MissingMessage)
	}
	stats, err := client.Today(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, stats)
	return nil
}
