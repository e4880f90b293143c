package generator

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/metrics"
	"promptforge/internal/infrastructure/observability"
	"promptforge/internal/utils/httpclients"
	"promptforge/internal/utils/platformerrors"
)

const (
	tracerName = "promptforge"

	// MaxStatelessContent bounds the request text of a stateless generation.
	MaxStatelessContent = 1000
	// MaxStatefulContent bounds the optional request text of a stateful
	// generation. The text is validated and echoed in debug output but not
	// sent; the stored turns carry the conversation.
	MaxStatefulContent = 10000

	ProviderName = "gemini"
)

// Transport sends one generateContent call to the model provider.
type Transport interface {
	GenerateContent(ctx context.Context, req *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error)
	Model() string
}

// Transactor runs fn in a database transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Prompts interface {
	ResponseSchema(ctx context.Context, p *prompt.Prompt) (*generation.ResponseSchema, error)
	IncrementUsage(ctx context.Context, p *prompt.Prompt) error
}

type History interface {
	Turns(ctx context.Context, promptID uint) ([]generation.Turn, error)
	Append(ctx context.Context, promptID uint, role chat.Role, text string) (*chat.Chat, error)
}

type UsageRecorder interface {
	RecordUsage(ctx context.Context, usage *tokenusage.TokenUsage) error
}

// Request is one generation against an owned prompt.
type Request struct {
	Prompt      *prompt.Prompt
	UserID      uint
	Mode        generation.Mode
	Content     string
	Attachments []generation.Attachment
	Debug       bool
	RequestID   string
}

// Result is the parsed model reply, or the debug echo when Debug was set.
type Result struct {
	Output       generation.Output
	RawText      string
	FinishReason string
	Usage        *generation.UsageMetadata
	State        generation.State
	Debug        *DebugEcho
}

// Service drives a generation from assembly to persistence.
type Service struct {
	prompts   Prompts
	history   History
	usage     UsageRecorder
	transport Transport
	tx        Transactor
}

func NewService(prompts Prompts, history History, usage UsageRecorder, transport Transport, tx Transactor) *Service {
	return &Service{
		prompts:   prompts,
		history:   history,
		usage:     usage,
		transport: transport,
		tx:        tx,
	}
}

// Generate runs the request. On any failure nothing is persisted and the
// returned error carries a generation.Failure or a platform error.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	ctx = httpclients.WithRequestID(ctx, req.RequestID)
	ctx, span := observability.StartSpan(ctx, tracerName, "generator.Generate")
	defer span.End()
	observability.AddSpanAttributes(ctx,
		attribute.String("prompt.id", req.Prompt.PublicID),
		attribute.String("generation.mode", string(req.Mode)),
		attribute.Bool("generation.debug", req.Debug),
		attribute.Int("generation.files", len(req.Attachments)),
	)

	log := logger.GetLogger().With().
		Str("prompt_id", req.Prompt.PublicID).
		Str("mode", string(req.Mode)).
		Str("request_id", req.RequestID).
		Logger()

	tracker := generation.NewTracker(func(from, to generation.State) {
		observability.AddSpanEvent(ctx, "generation."+string(to))
		log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("generation state")
	})

	start := time.Now()
	result, err := s.run(ctx, tracker, req)
	if err != nil {
		kind, _ := generation.KindOf(err)
		tracker.Fail(kind)
		observability.RecordError(ctx, err)
		metrics.RecordGeneration(string(req.Mode), outcomeLabel(kind), time.Since(start).Seconds())
		log.Warn().Err(err).Str("kind", string(kind)).Msg("generation failed")
		return nil, err
	}

	result.State = tracker.State()
	outcome := "success"
	if result.Debug != nil {
		outcome = "debug"
	}
	metrics.RecordGeneration(string(req.Mode), outcome, time.Since(start).Seconds())
	return result, nil
}

func (s *Service) run(ctx context.Context, tracker *generation.Tracker, req Request) (*Result, error) {
	if err := tracker.Advance(generation.StateAssembling); err != nil {
		return nil, err
	}
	schema, err := s.prompts.ResponseSchema(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	in := generation.AssembleInput{Mode: req.Mode, Content: req.Content, Attachments: req.Attachments}
	if req.Mode == generation.ModeStateful {
		turns, err := s.history.Turns(ctx, req.Prompt.ID)
		if err != nil {
			return nil, err
		}
		in.Turns = turns
	}
	contents, err := generation.Assemble(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := tracker.Advance(generation.StateBuilt); err != nil {
		return nil, err
	}
	payload := generation.BuildRequest(req.Prompt.Description, contents, schema)
	if req.Debug {
		return &Result{Debug: newDebugEcho(req, len(in.Turns), payload)}, nil
	}

	if err := tracker.Advance(generation.StateSent); err != nil {
		return nil, err
	}
	resp, err := s.transport.GenerateContent(ctx, payload)
	if err != nil {
		return nil, err
	}

	extraction, err := generation.Extract(ctx, resp)
	if err != nil {
		return nil, err
	}
	if err := tracker.Advance(generation.StateExtracted); err != nil {
		return nil, err
	}

	output, err := generation.ParseOutput(ctx, extraction.Text, schema != nil)
	if err != nil {
		return nil, err
	}
	if err := tracker.Advance(generation.StateParsed); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, req, extraction); err != nil {
		return nil, err
	}
	if err := tracker.Advance(generation.StatePersisted); err != nil {
		return nil, err
	}

	if extraction.Usage != nil {
		metrics.RecordTokens(s.transport.Model(), extraction.Usage.PromptTokenCount, extraction.Usage.CandidatesTokenCount)
	}
	return &Result{
		Output:       output,
		RawText:      extraction.Text,
		FinishReason: extraction.FinishReason,
		Usage:        extraction.Usage,
	}, nil
}

// persist writes every side effect of a successful round trip in one
// transaction: the stateful model turn, the usage counter and the token record.
func (s *Service) persist(ctx context.Context, req Request, extraction *generation.Extraction) error {
	write := func(ctx context.Context) error {
		if req.Mode == generation.ModeStateful {
			if _, err := s.history.Append(ctx, req.Prompt.ID, chat.RoleModel, extraction.Text); err != nil {
				return err
			}
		}
		if err := s.prompts.IncrementUsage(ctx, req.Prompt); err != nil {
			return err
		}
		return s.usage.RecordUsage(ctx, s.usageRecord(req, extraction))
	}

	var err error
	if s.tx == nil {
		err = write(ctx)
	} else {
		err = s.tx.Transaction(ctx, write)
	}
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist generation")
	}
	req.Prompt.CountUsage++
	return nil
}

func (s *Service) usageRecord(req Request, extraction *generation.Extraction) *tokenusage.TokenUsage {
	promptID := req.Prompt.ID
	record := &tokenusage.TokenUsage{
		UserID:   req.UserID,
		PromptID: &promptID,
		Model:    s.transport.Model(),
		Provider: ProviderName,
		Mode:     string(req.Mode),
	}
	if extraction.ModelVersion != "" {
		record.Model = extraction.ModelVersion
	}
	if extraction.Usage != nil {
		record.PromptTokens = extraction.Usage.PromptTokenCount
		record.CompletionTokens = extraction.Usage.CandidatesTokenCount
		record.TotalTokens = extraction.Usage.TotalTokenCount
	}
	if req.RequestID != "" {
		requestID := req.RequestID
		record.RequestID = &requestID
	}
	return record
}

func validateRequest(ctx context.Context, req Request) error {
	invalid := func(msg string) error {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, msg, nil, "")
	}
	switch {
	case req.Prompt == nil:
		return invalid("prompt is required")
	case !req.Mode.Valid():
		return invalid(fmt.Sprintf("unknown generation mode %q", req.Mode))
	case req.Mode == generation.ModeStateless && req.Content == "":
		return invalid("content is required")
	case req.Mode == generation.ModeStateless && utf8.RuneCountInString(req.Content) > MaxStatelessContent:
		return invalid(fmt.Sprintf("content exceeds maximum length of %d characters", MaxStatelessContent))
	case req.Mode == generation.ModeStateful && utf8.RuneCountInString(req.Content) > MaxStatefulContent:
		return invalid(fmt.Sprintf("content exceeds maximum length of %d characters", MaxStatefulContent))
	}
	return nil
}

func outcomeLabel(kind generation.Kind) string {
	if kind == "" {
		return "error"
	}
	return string(kind)
}
