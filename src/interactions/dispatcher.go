// Package interactions turns interaction requests into generated and
// published content, routing gated actions through the approval queue.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	aicore "github.com/selfai-labs/selfai/src/ai/core"
	"github.com/selfai-labs/selfai/src/approvals"
	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/ledger"
	"github.com/selfai-labs/selfai/src/metrics"
	"github.com/selfai-labs/selfai/src/notify"
	"github.com/selfai-labs/selfai/src/webclient"
)

var (
	// ErrGeneration aborts the request; no partial content is returned.
	ErrGeneration = errors.New("interactions: content generation failed")
	// ErrPublish is reported inside the Outcome, never returned.
	ErrPublish = errors.New("interactions: publishing failed")
)

const (
	maxOutputTokens     = 200
	promptTrendingTopic = 3

	defaultGenerationTimeout = 45 * time.Second
	defaultPublishTimeout    = 15 * time.Second
)

// Registry is the part of the companion registry the dispatcher drives.
type Registry interface {
	Get(tokenID uint64) (companions.Companion, error)
	Preference(owner int64) companions.OwnerPreference
	IncrementInteractions(tokenID uint64) error
}

// Publisher posts text on behalf of fid and returns the content hash.
type Publisher interface {
	Publish(ctx context.Context, text string, fid int64, parentHash string) (string, error)
}

// TrendSource supplies topic strings for prompts without their own context.
type TrendSource interface {
	Topics(ctx context.Context, limit int) []string
}

// Request is one interaction as submitted by a user or the scheduler.
type Request struct {
	TokenID     uint64                `json:"tokenId"`
	RequesterID int64                 `json:"userIdentity"`
	ActionType  companions.ActionType `json:"actionType"`
	Context     string                `json:"context,omitempty"`
	ReplyTarget string                `json:"replyTarget,omitempty"`
}

// Outcome is what the caller sees for a handled request.
type Outcome struct {
	Success       bool   `json:"success"`
	Content       string `json:"content,omitempty"`
	ContentID     string `json:"contentId,omitempty"`
	NeedsApproval bool   `json:"needsApproval"`
	ApprovalID    uint64 `json:"approvalId,omitempty"`
	Message       string `json:"message"`
}

type Dispatcher struct {
	registry  Registry
	queue     *approvals.Queue
	generator aicore.Client
	publisher Publisher
	trends    TrendSource
	ledger    ledger.Recorder
	notifier  notify.Notifier
	logger    zerolog.Logger

	generationTimeout time.Duration
	publishTimeout    time.Duration

	background sync.WaitGroup
}

type Option func(*Dispatcher)

func WithPublisher(p Publisher) Option { return func(d *Dispatcher) { d.publisher = p } }
func WithTrends(t TrendSource) Option { return func(d *Dispatcher) { d.trends = t } }
func WithLedger(l ledger.Recorder) Option { return func(d *Dispatcher) { d.ledger = l } }
func WithNotifier(n notify.Notifier) Option { return func(d *Dispatcher) { d.notifier = n } }
func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// WithTimeouts bounds each generation and publish call. Zero keeps the default.
func WithTimeouts(generation, publish time.Duration) Option {
	return func(d *Dispatcher) {
		if generation > 0 {
			d.generationTimeout = generation
		}
		if publish > 0 {
			d.publishTimeout = publish
		}
	}
}

func New(registry Registry, queue *approvals.Queue, generator aicore.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:          registry,
		queue:             queue,
		generator:         generator,
		ledger:            ledger.NewMemory(),
		notifier:          notify.Nop{},
		logger:            zerolog.Nop(),
		generationTimeout: defaultGenerationTimeout,
		publishTimeout:    defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleInteraction gates Post and Quote behind owner approval when the
// owner's preference requires it, and executes everything else directly.
func (d *Dispatcher) HandleInteraction(ctx context.Context, req Request) (Outcome, error) {
	if !req.ActionType.Valid() {
		return Outcome{}, fmt.Errorf("%w: action type %d", companions.ErrValidation, req.ActionType)
	}
	comp, err := d.registry.Get(req.TokenID)
	if err != nil {
		return Outcome{}, err
	}

	pref := d.registry.Preference(comp.OwnerID)
	if pref.RequiresApproval && gated(req.ActionType) {
		id, err := d.queue.Enqueue(ctx, req.TokenID, req.RequesterID, req.ActionType, req.Context, req.ReplyTarget)
		if err != nil {
			return Outcome{}, err
		}
		metrics.RecordInteraction(req.ActionType.String(), "queued")
		d.logger.Info().
			Uint64("token_id", req.TokenID).
			Uint64("approval_id", id).
			Str("action", req.ActionType.String()).
			Msg("interaction queued for approval")
		d.notifyOwner(ctx, comp, id, req)

		return Outcome{
			Success:       true,
			NeedsApproval: true,
			ApprovalID:    id,
			Message:       fmt.Sprintf("Queued for approval (ID: %d)", id),
		}, nil
	}

	return d.Execute(ctx, comp, req, 0)
}

// Execute generates content for req and publishes it for Post and Reply.
// approvalID is zero for requests that were never queued.
func (d *Dispatcher) Execute(ctx context.Context, comp companions.Companion, req Request, approvalID uint64) (Outcome, error) {
	action := req.ActionType.String()
	if req.ActionType == companions.ActionLike {
		metrics.RecordInteraction(action, "unsupported")
		return Outcome{Message: "Like actions are not supported yet"}, nil
	}

	persona := PersonaContext(comp)
	prompt := d.taskPrompt(ctx, persona, req)

	content, err := d.generate(ctx, persona, prompt)
	if err != nil {
		limited := webclient.IsRateLimit(err)
		metrics.RecordInteraction(action, generationFailure(limited))
		d.logger.Warn().Err(err).
			Uint64("token_id", comp.TokenID).
			Str("action", action).
			Bool("rate_limited", limited).
			Msg("generation failed")
		return Outcome{}, err
	}

	entry := &ledger.Entry{
		TokenID:     comp.TokenID,
		ActionType:  req.ActionType,
		RequesterID: req.RequesterID,
		ApprovalID:  approvalID,
		Content:     content,
	}
	defer d.record(ctx, entry)

	if !req.ActionType.Publishable() {
		metrics.RecordInteraction(action, "generated")
		return Outcome{Success: true, Content: content, Message: "Content generated successfully"}, nil
	}

	parent := ""
	if req.ActionType == companions.ActionReply {
		parent = req.ReplyTarget
	}
	hash, err := d.publish(ctx, content, comp.OwnerID, parent)
	if err != nil {
		entry.Error = err.Error()
		metrics.RecordInteraction(action, "publish_failed")
		d.logger.Warn().Err(err).Uint64("token_id", comp.TokenID).Str("action", action).Msg("publish failed")
		return Outcome{
			Content: content,
			Message: fmt.Sprintf("Content generated but publishing failed: %v", err),
		}, nil
	}

	entry.ContentID = hash
	entry.Published = true
	if err := d.registry.IncrementInteractions(comp.TokenID); err != nil {
		d.logger.Error().Err(err).Uint64("token_id", comp.TokenID).Msg("increment interactions")
	}
	metrics.RecordInteraction(action, "published")
	d.logger.Info().Uint64("token_id", comp.TokenID).Str("action", action).Str("hash", hash).Msg("content published")

	return Outcome{
		Success:   true,
		Content:   content,
		ContentID: hash,
		Message:   "Successfully posted to Farcaster",
	}, nil
}

// Approve resolves a queued interaction as the companion owner and runs it.
func (d *Dispatcher) Approve(ctx context.Context, approvalID uint64, approver int64) (Outcome, error) {
	pending, err := d.queue.Resolve(ctx, approvalID, approver)
	if err != nil {
		metrics.RecordApproval(resolveResult(err))
		return Outcome{}, err
	}
	metrics.RecordApproval("approved")

	comp, err := d.registry.Get(pending.TokenID)
	if err != nil {
		return Outcome{}, err
	}
	return d.Execute(ctx, comp, Request{
		TokenID:     pending.TokenID,
		RequesterID: pending.RequesterID,
		ActionType:  pending.ActionType,
		Context:     pending.Context,
		ReplyTarget: pending.ReplyTarget,
	}, approvalID)
}

// Reject discards a queued interaction without running it.
func (d *Dispatcher) Reject(ctx context.Context, approvalID uint64, approver int64) error {
	if err := d.queue.Reject(ctx, approvalID, approver); err != nil {
		metrics.RecordApproval(resolveResult(err))
		return err
	}
	metrics.RecordApproval("rejected")
	return nil
}

func (d *Dispatcher) generate(ctx context.Context, system, prompt string) (string, error) {
	if d.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrGeneration)
	}
	ctx, cancel := context.WithTimeout(ctx, d.generationTimeout)
	defer cancel()

	start := time.Now()
	content, err := d.generator.Generate(ctx, system, prompt, aicore.Options{MaxCompletionTokens: maxOutputTokens})
	content = strings.TrimSpace(content)
	if err == nil && content == "" {
		err = aicore.ErrEmptyResponse
	}
	metrics.RecordCollaboratorCall("generation", err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return content, nil
}

func (d *Dispatcher) publish(ctx context.Context, text string, fid int64, parent string) (string, error) {
	if d.publisher == nil {
		return "", fmt.Errorf("%w: no publisher configured", ErrPublish)
	}
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	start := time.Now()
	hash, err := d.publisher.Publish(ctx, text, fid, parent)
	metrics.RecordCollaboratorCall("publish", err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return hash, nil
}

func (d *Dispatcher) record(ctx context.Context, e *ledger.Entry) {
	if err := d.ledger.Record(ctx, e); err != nil {
		d.logger.Warn().Err(err).Uint64("token_id", e.TokenID).Msg("ledger record failed")
	}
}

// notifyOwner tells the owner about a queued approval without holding up the
// request. The send outlives the request context but not publishTimeout.
func (d *Dispatcher) notifyOwner(ctx context.Context, comp companions.Companion, approvalID uint64, req Request) {
	notice := notify.ApprovalNotice{
		ApprovalID:    approvalID,
		TokenID:       comp.TokenID,
		CompanionName: comp.Name,
		OwnerID:       comp.OwnerID,
		RequesterID:   req.RequesterID,
		ActionType:    req.ActionType,
		Context:       req.Context,
	}
	ctx = context.WithoutCancel(ctx)

	d.background.Add(1)
	go func() {
		defer d.background.Done()
		ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
		defer cancel()
		if err := d.notifier.ApprovalQueued(ctx, notice); err != nil {
			d.logger.Warn().Err(err).Uint64("approval_id", approvalID).Msg("owner notification failed")
		}
	}()
}

// Wait blocks until pending owner notifications have finished.
func (d *Dispatcher) Wait() {
	d.background.Wait()
}

func gated(a companions.ActionType) bool {
	return a == companions.ActionPost || a == companions.ActionQuote
}

func generationFailure(rateLimited bool) string {
	if rateLimited {
		return "generation_rate_limited"
	}
	return "generation_failed"
}

func resolveResult(err error) string {
	switch {
	case errors.Is(err, approvals.ErrNotFound):
		return "not_found"
	case errors.Is(err, companions.ErrUnauthorized):
		return "unauthorized"
	}
	return "error"
}
