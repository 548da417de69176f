// Command outreach sends WhatsApp messages to a selection of saved leads
// through a running API server, in batches separated by the rate-limit
// cooldown.
//
//	outreach -pending
//	outreach -ids lead-1,lead-2 -api http://localhost:5254
//	outreach -file selection.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xavierca1/leadreach/internal/client"
	"github.com/xavierca1/leadreach/internal/config"
	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var (
		apiURL   = flag.String("api", fmt.Sprintf("http://localhost:%d", cfg.Server.Port), "API server root URL")
		idList   = flag.String("ids", "", "comma-separated lead ids")
		idFile   = flag.String("file", "", "file with one lead id per line")
		pending  = flag.Bool("pending", false, "send to every saved lead not yet contacted")
		cooldown = flag.Duration("cooldown", cfg.RateLimit.Cooldown, "wait between batches")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *apiURL, *idList, *idFile, *pending, cfg.RateLimit.MaxLeads, *cooldown); err != nil {
		fmt.Fprintf(os.Stderr, "\noutreach: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL, idList, idFile string, pending bool, batchSize int, cooldown time.Duration) error {
	api := client.New(apiURL, client.DefaultTimeout)

	ids, err := selectLeads(ctx, api, idList, idFile, pending)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No leads to send.")
		return nil
	}

	snap, err := api.WhatsAppStatus(ctx)
	if err != nil {
		return fmt.Errorf("check whatsapp status: %w", err)
	}
	if snap.Status != whatsapp.StateConnected {
		return errors.New("WhatsApp is not connected; scan the QR code first")
	}

	batches := (len(ids) + batchSize - 1) / batchSize
	fmt.Printf("Sending to %d leads in %d batches of up to %d (cooldown %s)\n", len(ids), batches, batchSize, cooldown)

	s := scheduler.New(api, scheduler.Config{
		BatchSize:  batchSize,
		Cooldown:   cooldown,
		OnProgress: printProgress,
	})
	summary, err := s.Run(ctx, ids)

	fmt.Printf("\nTotal leads: %d\nSent: %d\nSkipped: %d\nFailed: %d\nGroups processed: %d\n",
		summary.TotalLeads, summary.Sent, summary.Skipped, summary.Failed, summary.Groups)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Run cancelled.")
		return nil
	}
	return err
}

func selectLeads(ctx context.Context, api *client.Client, idList, idFile string, pending bool) ([]string, error) {
	switch {
	case idList != "":
		return splitIDs(strings.Split(idList, ",")), nil
	case idFile != "":
		return readIDFile(idFile)
	case pending:
		leads, err := api.Leads(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list pending leads: %w", err)
		}
		ids := make([]string, 0, len(leads))
		for _, l := range leads {
			ids = append(ids, l.LeadID)
		}
		return ids, nil
	default:
		return nil, errors.New("one of -ids, -file or -pending is required")
	}
}

// readIDFile reads one id per line; blank lines and # comments are skipped.
func readIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); !strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return splitIDs(lines), nil
}

func splitIDs(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func printProgress(p scheduler.Progress) {
	switch p.Phase {
	case scheduler.PhaseWaiting:
		fmt.Printf("\rBatch %d/%d starts in %s   ", p.Batch, p.Batches, p.Remaining.Round(time.Second))
	case scheduler.PhaseSending:
		fmt.Printf("\rSending batch %d/%d...                \n", p.Batch, p.Batches)
	case scheduler.PhaseDone:
		fmt.Printf("Done: %d sent, %d skipped, %d failed\n", p.Totals.Sent, p.Totals.Skipped, p.Totals.Failed)
	}
}
