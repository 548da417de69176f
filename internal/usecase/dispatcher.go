package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/logging"
)

// DispatcherConfig controls pacing. Zero values are valid and disable the pause.
type DispatcherConfig struct {
	MessageDelay time.Duration
	PauseMin     time.Duration
	PauseMax     time.Duration
	// StrictRegistrationCheck turns a definitive "not registered" lookup into
	// a per-lead error. Lookup failures are always tolerated.
	StrictRegistrationCheck bool
}

// BatchResult is the outcome of one SendBatch call.
type BatchResult struct {
	Results []entity.DispatchResult `json:"results"`
	Summary entity.DispatchSummary  `json:"summary"`
}

// Dispatcher sends the category templates to leads one at a time.
type Dispatcher struct {
	leads     entity.LeadRepository
	messages  entity.MessageRepository
	analytics entity.AnalyticsRepository
	transport MessageTransport
	greeter   *Greeter
	cfg       DispatcherConfig

	sleep Sleeper
	pause func() time.Duration
	now   func() time.Time
}

func NewDispatcher(
	leads entity.LeadRepository,
	messages entity.MessageRepository,
	analytics entity.AnalyticsRepository,
	transport MessageTransport,
	greeter *Greeter,
	cfg DispatcherConfig,
) *Dispatcher {
	d := &Dispatcher{
		leads:     leads,
		messages:  messages,
		analytics: analytics,
		transport: transport,
		greeter:   greeter,
		cfg:       cfg,
		sleep:     SleepContext,
		now:       time.Now,
	}
	d.pause = d.randomPause
	return d
}

func (d *Dispatcher) randomPause() time.Duration {
	spread := d.cfg.PauseMax - d.cfg.PauseMin
	if spread <= 0 {
		return d.cfg.PauseMin
	}
	// whole seconds when the range allows it, like a human would wait
	if spread >= time.Second {
		return d.cfg.PauseMin + time.Duration(rand.Int64N(int64(spread/time.Second)+1))*time.Second
	}
	return d.cfg.PauseMin + time.Duration(rand.Int64N(int64(spread)+1))
}

// SendBatch processes leadIDs in order. The caller has already validated the
// batch size and reserved rate-limit capacity. A lead's failure is reported in
// its result and never stops the batch. Leads and analytics are written once
// at the end. A cancelled ctx stops before the next lead; processed leads are
// still persisted.
func (d *Dispatcher) SendBatch(ctx context.Context, leadIDs []string) (BatchResult, error) {
	log := logging.Ctx(ctx)

	leads, err := d.leads.List(ctx)
	if err != nil {
		return BatchResult{}, storageError("read leads", err)
	}
	sets, err := d.messages.List(ctx)
	if err != nil {
		return BatchResult{}, storageError("read messages", err)
	}
	greeting := "Hi " + d.greeter.Current()

	results := make([]entity.DispatchResult, 0, len(leadIDs))
	var cancelErr error
	for i, id := range leadIDs {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		lead := entity.FindLead(leads, id)
		if lead == nil {
			results = append(results, entity.DispatchResult{LeadID: id, Status: entity.DispatchError, Message: "Lead not found"})
			continue
		}
		if lead.Contacted() {
			results = append(results, entity.DispatchResult{
				LeadID:      id,
				Status:      entity.DispatchSkipped,
				Message:     "Messages already sent to this number",
				PhoneNumber: lead.ContactNumber,
			})
			continue
		}
		set := entity.FindTemplateSet(sets, lead.Category)
		if set == nil {
			results = append(results, entity.DispatchResult{
				LeadID:  id,
				Status:  entity.DispatchError,
				Message: fmt.Sprintf("No messages found for category %q", lead.Category),
			})
			continue
		}
		if !lead.HasContactNumber() {
			results = append(results, entity.DispatchResult{LeadID: id, Status: entity.DispatchError, Message: "No contact number"})
			continue
		}

		if err := d.deliver(ctx, lead, set, greeting); err != nil {
			log.Warn().Err(err).Str("lead_id", id).Str("phone", lead.ContactNumber).Str("category", lead.Category).Msg("message delivery failed")
			results = append(results, entity.DispatchResult{
				LeadID:      id,
				Status:      entity.DispatchError,
				Message:     classifySendError(err, lead.ContactNumber),
				PhoneNumber: lead.ContactNumber,
			})
		} else {
			lead.MarkMessaged(d.now())
			log.Info().Str("lead_id", id).Str("category", lead.Category).Bool("has_website", IsValidWebsite(lead.Website)).Msg("messages sent")
			results = append(results, entity.DispatchResult{LeadID: id, Status: entity.DispatchSuccess, Message: "Messages sent successfully"})
		}

		if (i+1)%2 == 0 && i < len(leadIDs)-1 {
			pause := d.pause()
			log.Debug().Dur("pause", pause).Msg("pacing before next lead")
			if err := d.sleep(ctx, pause); err != nil {
				cancelErr = err
				break
			}
		}
	}

	// a cancelled request context must not lose the leads already marked
	saveCtx := context.WithoutCancel(ctx)
	if err := d.leads.ReplaceAll(saveCtx, leads); err != nil {
		return BatchResult{}, storageError("save leads", err)
	}
	if err := d.analytics.Save(saveCtx, entity.ComputeAnalytics(leads, d.now())); err != nil {
		log.Error().Err(err).Msg("failed to refresh analytics after batch")
	}

	out := BatchResult{Results: results, Summary: entity.Summarize(results)}
	if cancelErr != nil {
		return out, cancelErr
	}
	return out, nil
}

func (d *Dispatcher) deliver(ctx context.Context, lead *entity.Lead, set *entity.MessageTemplateSet, greeting string) error {
	bodies := set.Bodies()
	if len(bodies) == 0 && !set.GreetingEnabled() {
		return errors.New("No messages found in category")
	}

	address, err := TransportAddress(lead.ContactNumber)
	if err != nil {
		return err
	}

	registered, err := d.transport.IsRegistered(ctx, address)
	switch {
	case err != nil:
		logging.Ctx(ctx).Warn().Err(err).Str("phone", lead.ContactNumber).Msg("could not verify number, sending anyway")
	case !registered && d.cfg.StrictRegistrationCheck:
		return fmt.Errorf("phone number %s is not registered on WhatsApp", lead.ContactNumber)
	case !registered:
		logging.Ctx(ctx).Warn().Str("phone", lead.ContactNumber).Msg("number reported as not registered, sending anyway")
	}

	if set.GreetingEnabled() {
		if err := d.send(ctx, address, greeting); err != nil {
			return err
		}
	}

	// a greeting-only set still counts as a delivered lead
	for _, body := range bodies {
		if err := d.send(ctx, address, fillPlaceholders(body, lead)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, address, body string) error {
	if err := d.transport.SendText(ctx, address, body); err != nil {
		return err
	}
	return d.sleep(ctx, d.cfg.MessageDelay)
}

// fillPlaceholders substitutes lead fields as stored; absent fields become "".
func fillPlaceholders(body string, lead *entity.Lead) string {
	return strings.NewReplacer(
		"{name}", lead.BusinessName,
		"{company}", lead.BusinessName,
		"{website}", lead.Website,
		"{email}", lead.EmailID,
		"{phone}", lead.ContactNumber,
		"{category}", lead.Category,
	).Replace(body)
}

func classifySendError(err error, phone string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "No LID for user"), strings.Contains(msg, "not registered"):
		return fmt.Sprintf("Phone number %s is not registered on WhatsApp or is invalid", phone)
	case strings.Contains(msg, "Invalid phone number"):
		return msg
	case strings.Contains(msg, "not found"):
		return "Contact not found: " + phone
	default:
		return msg
	}
}
