// Package ai is the administrator assistant: a Gemini model that may run
// read-only SQL against the marketplace database to answer questions.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	toolName = "run_readonly_sql"
	maxRows  = 200
	// maxToolCalls bounds one conversation turn.
	maxToolCalls = 5
)

var ErrNotReadOnly = errors.New("security violation: only single SELECT statements are allowed")

// AIService holds the Gemini client and the read-only database pool.
type AIService struct {
	Client *genai.Client
	DB     *sqlx.DB
	Model  string
	Log    *logrus.Entry
}

// NewAIService initializes the Gemini client.
func NewAIService(ctx context.Context, apiKey, model string, dbReadOnly *sqlx.DB, log *logrus.Entry) (*AIService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client, DB: dbReadOnly, Model: model, Log: log}, nil
}

func (s *AIService) Close() error {
	return s.Client.Close()
}

// GenerateResponse answers one admin question. It returns the answer and
// the total tokens the exchange consumed.
func (s *AIService) GenerateResponse(ctx context.Context, userMessage string) (string, int, error) {
	model := s.Client.GenerativeModel(s.Model)
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        toolName,
			Description: "Executes a READ-ONLY SQL query (SELECT only) against the marketplace database.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "The MySQL SELECT query to execute."},
				},
				Required: []string{"query"},
			},
		}},
	}}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the MintVerse admin assistant.
			Access: MySQL database (%s).
			Schema: %s
			Rules: SELECT only. Amounts are in ETH with 4 decimals. Be concise.
		`, toolName, Schema))},
	}

	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(userMessage))
	if err != nil {
		return "", 0, fmt.Errorf("error sending message: %w", err)
	}

	tokens := 0
	for calls := 0; ; calls++ {
		if res.UsageMetadata != nil {
			tokens = int(res.UsageMetadata.TotalTokenCount)
		}
		if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
			return "No response.", tokens, nil
		}

		part := res.Candidates[0].Content.Parts[0]
		call, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), tokens, nil
		}
		if call.Name != toolName {
			return "", tokens, fmt.Errorf("unknown function: %s", call.Name)
		}
		if calls >= maxToolCalls {
			return "", tokens, errors.New("too many tool calls")
		}

		query, _ := call.Args["query"].(string)
		s.Log.WithField("query", query).Info("assistant running SQL")

		result, err := s.runReadOnlyQuery(ctx, query)
		if err != nil {
			result = fmt.Sprintf("SQL Error: %v", err)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     toolName,
			Response: map[string]any{"result": result},
		})
		if err != nil {
			return "", tokens, fmt.Errorf("tool response error: %w", err)
		}
	}
}

var writeKeywords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|REPLACE|GRANT|REVOKE|LOCK|CALL|HANDLER|LOAD|SET|INTO\s+OUTFILE)\b`)

// checkReadOnly rejects anything but one SELECT (or WITH ... SELECT)
// statement. The pool itself should also use a read-only database user.
func checkReadOnly(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if q == "" || strings.Contains(q, ";") {
		return ErrNotReadOnly
	}
	head := strings.ToUpper(strings.Fields(q)[0])
	if head != "SELECT" && head != "WITH" {
		return ErrNotReadOnly
	}
	if writeKeywords.MatchString(q) {
		return ErrNotReadOnly
	}
	return nil
}

func (s *AIService) runReadOnlyQuery(ctx context.Context, query string) (string, error) {
	if err := checkReadOnly(query); err != nil {
		return "", err
	}
	rows, err := s.DB.QueryxContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	table := []map[string]any{}
	for rows.Next() && len(table) < maxRows {
		entry := map[string]any{}
		if err := rows.MapScan(entry); err != nil {
			return "", err
		}
		for k, v := range entry {
			if b, ok := v.([]byte); ok {
				entry[k] = string(b)
			}
		}
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	out, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Schema is the table summary given to the model.
const Schema = `
	- users (id, name, email, role [user, admin], eth_address, is_email_verified, city, country, created_at)
	- ledgers (user_id, main_wallet_balance, gas_fee_balance, updated_at)
	- ledger_entries (id, user_id, wallet [main, gas], delta, reason, reference, created_at)
	- wallet_deposits (id, ref_number, user_id, eth_address, amount, method, status [Pending, Approved, Rejected], created_at)
	- gas_fee_deposits (id, ref_number, user_id, amount, status [Pending, Approved, Rejected], created_at)
	- withdrawals (id, ref_number, user_id, eth_address, amount, status [Pending, Approved, Rejected], created_at)
	- categories (id, name, slug)
	- listings (id, ref_number, name, category, collection_name, price, royalties, views, status [Listed, Available, Pending, Sold], creator, owner_id, buyer_id, buyer_name, created_at)
	- mint_requests (id, user_id, name, category, collection_name, price, royalties, status [Pending, Approved, Rejected], listing_id, created_at)
	- listing_views (listing_id, user_id, created_at)
	- transactions (id, ref_number, buyer_id, buyer_name, owner_id, owner_name, listing_id, listed_price, status [Pending, Sold, Rejected], created_at)
	- offers (id, listing_id, user_id, buyer_name, offered_price, status [Pending, Accepted, Declined], created_at)
	- notifications (id, user_id, message, is_read, created_at)
	- contact_messages (id, name, email, subject, created_at)
`
