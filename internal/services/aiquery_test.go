package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/testutil"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
)

// fakeLLM returns a canned reply and records the prompts it saw.
type fakeLLM struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	f.lastSystem, f.lastUser = system, user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAIQueryServiceTranslatesAndMatches(t *testing.T) {
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	llm := &fakeLLM{reply: `{"operator":"AND","conditions":[{"field":"starred","operator":"equals","value":true}]}`}
	svc := NewAIQueryService(log, llm,
		repos.NewContactRepo(db, log),
		repos.NewContactTagRepo(db, log),
		repos.NewContactGroupRepo(db, log),
		repos.NewFactRepo(db, log),
	)
	ctx := context.Background()

	starred := testutil.SeedContact(t, ctx, db, "Starry", nil, nil)
	if err := db.Model(&types.Contact{}).Where("id = ?", starred.ID).Update("starred", true).Error; err != nil {
		t.Fatalf("star contact: %v", err)
	}
	testutil.SeedContact(t, ctx, db, "Plain", nil, nil)

	out, err := svc.Query(ctx, "who are my starred contacts?", 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out.Contacts) != 1 || out.Contacts[0].ID != starred.ID {
		t.Fatalf("contacts: want just %s, got %v", starred.ID, matchedIDs(out.Contacts))
	}
	if !strings.Contains(string(out.Rules), `"starred"`) {
		t.Fatalf("rules not echoed: %s", out.Rules)
	}
	if !strings.Contains(llm.lastSystem, "fact:<key>") || !strings.Contains(llm.lastSystem, "display_name") {
		t.Fatalf("system prompt missing field docs: %q", llm.lastSystem)
	}
	if llm.lastUser != "who are my starred contacts?" {
		t.Fatalf("user prompt: %q", llm.lastUser)
	}
}

func TestAIQueryServiceRejectsUnusableReplies(t *testing.T) {
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	llm := &fakeLLM{}
	svc := NewAIQueryService(log, llm,
		repos.NewContactRepo(db, log),
		repos.NewContactTagRepo(db, log),
		repos.NewContactGroupRepo(db, log),
		repos.NewFactRepo(db, log),
	)
	ctx := context.Background()

	if _, err := svc.Query(ctx, "   ", 0); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("blank question: want validation, got %v", err)
	}

	for name, reply := range map[string]string{
		"broken json":     `{"operator":`,
		"unknown field":   `{"operator":"AND","conditions":[{"field":"height","operator":"equals","value":180}]}`,
		"cannot express":  `{"operator":"AND","conditions":[]}`,
		"prose not json":  `I cannot answer that.`,
		"wrong operators": `{"operator":"AND","conditions":[{"field":"starred","operator":"matches","value":true}]}`,
	} {
		llm.reply = reply
		if _, err := svc.Query(ctx, "anything", 0); !apperr.IsCode(err, apperr.CodeValidation) {
			t.Fatalf("%s: want validation, got %v", name, err)
		}
	}

	llm.err = errors.New("rate limited")
	if _, err := svc.Query(ctx, "anything", 0); err == nil {
		t.Fatalf("llm failure should surface an error")
	}
}
