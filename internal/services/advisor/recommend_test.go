package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

func recommendRequest() interfaces.RecommendRequest {
	return interfaces.RecommendRequest{
		Enriched:       sampleEnriched(),
		Preferences:    models.Preferences{RiskProfile: "Moderate", Industries: "Tech"},
		Budget:         5000,
		BaseCurrency:   "USD",
		PreferredModel: "model-a",
	}
}

func TestRecommend_PassesReportAndInstruction(t *testing.T) {
	client := newMockGenAI()
	client.responses["model-a"] = "HOLD Alpha Inc (AAA)"

	svc := newTestService(client)
	text, err := svc.Recommend(context.Background(), recommendRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "HOLD Alpha Inc (AAA)" {
		t.Errorf("unexpected text: %q", text)
	}

	req := client.requests["model-a"]
	if !strings.Contains(req.Prompt, "PORTFOLIO SNAPSHOT") {
		t.Error("prompt should be the situation report")
	}
	if !strings.Contains(req.SystemInstruction, "SELL, BUY, and HOLD") {
		t.Error("system instruction missing the action vocabulary constraint")
	}
	if !strings.Contains(req.SystemInstruction, "whole number of shares") {
		t.Error("system instruction missing the share discipline")
	}
	if !strings.Contains(req.SystemInstruction, "CASH FLOW SUMMARY") {
		t.Error("system instruction missing the cash-flow summary block")
	}
	if !strings.Contains(req.SystemInstruction, "All prices in USD.") {
		t.Error("system instruction missing the base currency")
	}
}

func TestRecommend_FallbackNoteAppended(t *testing.T) {
	client := newMockGenAI()
	client.errs["model-a"] = transientErr("model-a", 429)
	client.responses["model-b"] = "HOLD Alpha Inc (AAA)"

	svc := newTestService(client)
	text, err := svc.Recommend(context.Background(), recommendRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Fallback model used: model-b") {
		t.Errorf("expected fallback note, got:\n%s", text)
	}
}

func TestRecommend_ExhaustionReturnsDiagnosticText(t *testing.T) {
	client := newMockGenAI()
	client.errs["model-a"] = transientErr("model-a", 429)
	client.errs["model-b"] = transientErr("model-b", 404)
	client.errs["model-c"] = &models.ProviderError{
		Model: "model-c", StatusCode: 429, Kind: models.ErrorKindTransient,
		RetryHintSeconds: 17, Message: "rate limited, retry in 17s",
	}

	svc := newTestService(client)
	text, err := svc.Recommend(context.Background(), recommendRequest())
	if err != nil {
		t.Fatalf("exhaustion is a displayable outcome, got error: %v", err)
	}
	if !strings.Contains(text, "All models failed") {
		t.Errorf("expected diagnostic text, got:\n%s", text)
	}
	if !strings.Contains(text, "[429]  model-a") || !strings.Contains(text, "[404]  model-b") {
		t.Errorf("expected per-model lines, got:\n%s", text)
	}
	if !strings.Contains(text, "Retry in ~17 seconds.") {
		t.Errorf("expected retry hint, got:\n%s", text)
	}
}

func TestRecommend_FatalErrorSurfaces(t *testing.T) {
	client := newMockGenAI()
	client.errs["model-a"] = fatalErr("model-a")

	svc := newTestService(client)
	_, err := svc.Recommend(context.Background(), recommendRequest())

	var provErr *models.ProviderError
	if !errors.As(err, &provErr) || provErr.Kind != models.ErrorKindFatal {
		t.Fatalf("expected fatal ProviderError, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Errorf("fatal error must abort the dispatch, got calls %v", client.calls)
	}
}

func TestBuildSystemInstruction_EmptyPortfolio(t *testing.T) {
	instr := buildSystemInstruction(models.Preferences{}, "SEK", false, 0)
	if !strings.Contains(instr, "3-5 starter instruments") {
		t.Error("empty portfolio must request starter instruments")
	}
}

func TestBuildSystemInstruction_SuggestNew(t *testing.T) {
	instr := buildSystemInstruction(models.Preferences{}, "SEK", true, 3)
	if !strings.Contains(instr, "2-3 NEW instruments") {
		t.Error("suggest-new must request additional candidates")
	}

	withoutFlag := buildSystemInstruction(models.Preferences{}, "SEK", false, 3)
	if strings.Contains(withoutFlag, "NEW instruments") {
		t.Error("new-asset clause must be absent when the flag is off")
	}
}

func TestBuildSystemInstruction_Countries(t *testing.T) {
	instr := buildSystemInstruction(models.Preferences{Countries: "Sweden, Norway"}, "SEK", false, 1)
	if !strings.Contains(instr, "Sweden, Norway") {
		t.Error("countries preference missing from instruction")
	}
}
