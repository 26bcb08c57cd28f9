package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dealerdesk/lead-agent-platform/internal/facts"
	"github.com/dealerdesk/lead-agent-platform/internal/llm"
	"github.com/dealerdesk/lead-agent-platform/internal/memory"
	"github.com/dealerdesk/lead-agent-platform/internal/model"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
	"github.com/dealerdesk/lead-agent-platform/pkg/metrics"
)

// Request is one inbound customer message.
type Request struct {
	LeadID         string
	Text           string
	DealershipName string
}

// Orchestrator sequences the pipeline for a single request/response cycle:
// load context, classify, decide handoff, retrieve facts, rotate the
// opener, compose the prompt, synthesize and shape the reply, persist the
// customer turn, and branch to a reply or handoff action.
type Orchestrator struct {
	store        memory.Store
	retriever    facts.Retriever
	llmClient    llm.Client
	contextTurns int
	logger       *logger.Logger
}

// NewOrchestrator creates the agent pipeline. llmClient may be nil, in
// which case replies come from the placeholder template. contextTurns
// bounds how much history is loaded per request.
func NewOrchestrator(store memory.Store, retriever facts.Retriever, llmClient llm.Client, contextTurns int, log *logger.Logger) *Orchestrator {
	if contextTurns <= 0 {
		contextTurns = historyTurns
	}
	return &Orchestrator{
		store:        store,
		retriever:    retriever,
		llmClient:    llmClient,
		contextTurns: contextTurns,
		logger:       log,
	}
}

// HandleMessage runs the full pipeline for one inbound message. The
// caller is responsible for recording the agent's own turn after the reply
// is actually delivered. Errors propagate wrapped; there are no retries.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) (*model.AgentResult, error) {
	return o.handle(ctx, req, nil)
}

// HandleMessageStream is HandleMessage with raw reply tokens delivered
// through onToken as they are synthesized. The action text is still the
// post-processed final reply.
func (o *Orchestrator) HandleMessageStream(ctx context.Context, req Request, onToken llm.StreamCallback) (*model.AgentResult, error) {
	return o.handle(ctx, req, onToken)
}

func (o *Orchestrator) handle(ctx context.Context, req Request, onToken llm.StreamCallback) (*model.AgentResult, error) {
	lc, err := o.store.ConversationContext(ctx, req.LeadID, o.contextTurns)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	intent := ClassifyIntent(req.Text)
	decision := DecideHandoff(intent, lc)

	retrieved, err := o.retriever.FactsForIntent(ctx, intent, req.Text, lc)
	if err != nil {
		return nil, fmt.Errorf("retrieve facts: %w", err)
	}

	opener, nextStyle := NextOpener(lc.Style)
	if err := o.store.SetStyle(ctx, req.LeadID, nextStyle); err != nil {
		return nil, fmt.Errorf("persist style: %w", err)
	}
	lc.Style = nextStyle

	userMessage := BuildUserMessage(opener, req.Text, lc.Facts, retrieved, lc.Turns)
	payload := BuildPrompt(req.DealershipName, userMessage)

	reply, err := o.synthesizeReply(ctx, payload, opener, req.Text, onToken)
	if err != nil {
		return nil, fmt.Errorf("synthesize reply: %w", err)
	}
	reply = PostProcess(reply)

	if err := o.store.AppendTurn(ctx, req.LeadID, model.Turn{
		Sender:  model.SenderCustomer,
		Message: req.Text,
	}); err != nil {
		return nil, fmt.Errorf("persist customer turn: %w", err)
	}

	metrics.IntentsTotal.WithLabelValues(string(intent)).Inc()

	result := &model.AgentResult{
		Intent:  intent,
		Prompt:  payload,
		Context: lc,
	}

	if decision.Should {
		metrics.HandoffsTotal.WithLabelValues(decision.Reason).Inc()
		o.logger.Info("handing off to human",
			zap.String("lead_id", req.LeadID),
			zap.String("intent", string(intent)),
			zap.String("reason", decision.Reason),
		)
		result.Action = model.AgentAction{
			Type:   model.ActionHandoff,
			Reason: decision.Reason,
			Note:   decision.Note,
		}
		return result, nil
	}

	result.Action = model.AgentAction{
		Type: model.ActionReply,
		Text: reply,
	}
	return result, nil
}

// RecordAgentTurn persists the agent's delivered reply to conversation
// memory. The pipeline itself records only the customer turn; callers
// invoke this once the reply has actually been sent.
func (o *Orchestrator) RecordAgentTurn(ctx context.Context, leadID, text string) error {
	if err := o.store.AppendTurn(ctx, leadID, model.Turn{
		Sender:  model.SenderAgent,
		Message: text,
	}); err != nil {
		return fmt.Errorf("persist agent turn: %w", err)
	}
	return nil
}

// synthesizeReply produces the provisional reply text. With an LLM client
// configured the composed prompt is sent to the model; otherwise a fixed
// template stands in so the rest of the pipeline can be exercised.
func (o *Orchestrator) synthesizeReply(ctx context.Context, payload *model.PromptPayload, opener, customerText string, onToken llm.StreamCallback) (string, error) {
	if o.llmClient == nil {
		reply := fmt.Sprintf("%s You asked about %q. Happy to help with that. A teammate can confirm specifics shortly.", opener, customerText)
		if onToken != nil {
			for i, word := range strings.Fields(reply) {
				if err := onToken(word+" ", i); err != nil {
					return "", err
				}
			}
		}
		return reply, nil
	}

	creq := &llm.CompletionRequest{Messages: ChatMessages(payload)}

	var resp *llm.CompletionResponse
	var err error
	if onToken != nil {
		resp, err = o.llmClient.CompleteStream(ctx, creq, onToken)
	} else {
		resp, err = o.llmClient.Complete(ctx, creq)
	}
	if err != nil {
		metrics.RecordLLMStream(o.llmClient.Name(), "error", 0, 0, 0)
		return "", err
	}

	metrics.RecordLLMStream(resp.Model, "success", float64(resp.LatencyMs)/1000, resp.TokensIn, resp.TokensOut)
	return resp.Content, nil
}

// ChatMessages flattens a prompt payload into the provider-neutral chat
// format: system text, few-shot pairs as user/assistant exchanges, then
// the composed user message.
func ChatMessages(payload *model.PromptPayload) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, 0, 2*len(payload.FewShot)+len(payload.Messages))
	msgs = append(msgs, llm.ChatMessage{Role: "system", Content: payload.System})
	for _, ex := range payload.FewShot {
		msgs = append(msgs,
			llm.ChatMessage{Role: "user", Content: ex.Input},
			llm.ChatMessage{Role: "assistant", Content: ex.Output},
		)
	}
	for _, m := range payload.Messages {
		if m.Role == "system" {
			continue
		}
		msgs = append(msgs, llm.ChatMessage(m))
	}
	return msgs
}
