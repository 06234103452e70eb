package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaiclient "github.com/touchbasehq/touchbase-backend/internal/clients/openai"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/rules"
)

// AIQueryResult pairs the rule document the model produced with the
// contacts it matched, so clients can show (and save) the translation.
type AIQueryResult struct {
	Rules    json.RawMessage  `json:"rules"`
	Contacts []*types.Contact `json:"contacts"`
}

type AIQueryService interface {
	// Query translates a natural-language question into a rule document
	// and evaluates it against live contacts.
	Query(ctx context.Context, question string, limit int) (*AIQueryResult, error)
}

type aiQueryService struct {
	log     *logger.Logger
	ai      openaiclient.Client
	matcher *contactMatcher
}

func NewAIQueryService(
	baseLog *logger.Logger,
	ai openaiclient.Client,
	contactRepo repos.ContactRepo,
	contactTagRepo repos.ContactTagRepo,
	contactGroupRepo repos.ContactGroupRepo,
	factRepo repos.FactRepo,
) AIQueryService {
	return &aiQueryService{
		log: baseLog.With("service", "AIQueryService"),
		ai:  ai,
		matcher: &contactMatcher{
			contactRepo:      contactRepo,
			contactTagRepo:   contactTagRepo,
			contactGroupRepo: contactGroupRepo,
			factRepo:         factRepo,
		},
	}
}

const aiQuerySystemPrompt = `You translate questions about a personal address book into a JSON rule document.

Reply with ONLY a JSON object of this exact shape:
{"operator": "AND" | "OR", "conditions": [{"field": "...", "operator": "...", "value": ...}]}

Fields: %s. A contact fact is addressed as "fact:<key>", e.g. "fact:birthday" or "fact:employer".
Condition operators: equals, not_equals, contains, greater_than, less_than, is_empty, is_not_empty.
Omit "value" for is_empty and is_not_empty. Values are strings, numbers, or booleans.
Use greater_than/less_than only on numeric fields (manual_importance, engagement_score).
If the question cannot be expressed with these fields and operators, reply with {"operator": "AND", "conditions": []} and nothing else.`

func (s *aiQueryService) Query(ctx context.Context, question string, limit int) (*AIQueryResult, error) {
	const op = "AIQueryService.Query"

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.Validation(op, "question is required")
	}
	if s.ai == nil {
		return nil, apperr.Internal(op, "ai client not configured", nil)
	}

	system := fmt.Sprintf(aiQuerySystemPrompt, strings.Join(rules.Fields(), ", "))
	raw, err := s.ai.GenerateJSON(ctx, system, question)
	if err != nil {
		s.log.Error("query translation failed", "error", err)
		return nil, MapError(op, err)
	}

	rs, encoded, err := parseRuleDoc(op, json.RawMessage(raw))
	if err != nil {
		s.log.Warn("model produced an unusable rule document", "error", err, "raw", raw)
		return nil, apperr.Validation(op, "could not translate question into a contact query")
	}

	matched, _, err := s.matcher.Match(ctx, nil, rs, nil, clampPageLimit(limit))
	if err != nil {
		return nil, MapError(op, err)
	}
	s.log.Info("ai query evaluated", "conditions", len(rs.Conditions), "matched", len(matched))
	return &AIQueryResult{Rules: encoded, Contacts: matched}, nil
}
