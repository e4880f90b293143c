package generator

import (
	"context"
	"errors"

	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/utils/httpclients"
)

// store holds everything the fakes persist so a fake transaction can roll it back.
type store struct {
	turns   map[uint][]*chat.Chat
	counts  map[uint]int64
	records []*tokenusage.TokenUsage
}

func newStore() *store {
	return &store{turns: map[uint][]*chat.Chat{}, counts: map[uint]int64{}}
}

func (s *store) snapshot() *store {
	c := newStore()
	for k, v := range s.turns {
		c.turns[k] = append([]*chat.Chat(nil), v...)
	}
	for k, v := range s.counts {
		c.counts[k] = v
	}
	c.records = append(c.records, s.records...)
	return c
}

type fakeTx struct {
	st      *store
	commits int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := f.st.snapshot()
	if err := fn(ctx); err != nil {
		*f.st = *before
		return err
	}
	f.commits++
	return nil
}

type fakePrompts struct {
	st *store
}

func (f *fakePrompts) ResponseSchema(ctx context.Context, p *prompt.Prompt) (*generation.ResponseSchema, error) {
	if !p.HasSchema() {
		return nil, nil
	}
	return generation.NormalizeSchema(ctx, p.JSONSchema)
}

func (f *fakePrompts) IncrementUsage(_ context.Context, p *prompt.Prompt) error {
	f.st.counts[p.ID]++
	return nil
}

type fakeHistory struct {
	st *store
}

func (f *fakeHistory) Turns(_ context.Context, promptID uint) ([]generation.Turn, error) {
	return chat.ToTurns(f.st.turns[promptID]), nil
}

func (f *fakeHistory) Append(_ context.Context, promptID uint, role chat.Role, text string) (*chat.Chat, error) {
	c := &chat.Chat{PromptID: promptID, Role: role, Text: text}
	f.st.turns[promptID] = append(f.st.turns[promptID], c)
	return c, nil
}

type fakeUsage struct {
	st   *store
	fail bool
}

func (f *fakeUsage) RecordUsage(_ context.Context, usage *tokenusage.TokenUsage) error {
	if f.fail {
		return errors.New("usage table unavailable")
	}
	f.st.records = append(f.st.records, usage)
	return nil
}

type fakeTransport struct {
	resp       *generation.GenerateContentResponse
	err        error
	calls      int
	requests   []*generation.GenerateContentRequest
	onCall     func()
	requestIDs []string
}

func (f *fakeTransport) GenerateContent(ctx context.Context, req *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error) {
	requestID, _ := ctx.Value(httpclients.RequestID{}).(string)
	f.requestIDs = append(f.requestIDs, requestID)
	f.calls++
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTransport) Model() string {
	return "gemini-2.5-flash"
}

func textResponse(text string) *generation.GenerateContentResponse {
	return &generation.GenerateContentResponse{
		Candidates: []generation.Candidate{{
			Content: &generation.CandidateContent{
				Role:  generation.RoleModel,
				Parts: []generation.CandidatePart{{Text: &text}},
			},
			FinishReason: "STOP",
		}},
		UsageMetadata: &generation.UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 8, TotalTokenCount: 20},
	}
}

type harness struct {
	st        *store
	tx        *fakeTx
	usage     *fakeUsage
	transport *fakeTransport
	svc       *Service
}

func newHarness() *harness {
	st := newStore()
	h := &harness{
		st:        st,
		tx:        &fakeTx{st: st},
		usage:     &fakeUsage{st: st},
		transport: &fakeTransport{},
	}
	h.svc = NewService(&fakePrompts{st: st}, &fakeHistory{st: st}, h.usage, h.transport, h.tx)
	return h
}
