// Package google exports confirmed expenses to a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"spendlog/internal/core"
	ports "spendlog/internal/sheets"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.ExpenseAppender = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. The sheet name defaults to "Expenses"
// and is prefixed with the current year ("2026 Expenses").
//
// Credentials, in order of preference: OAuth client+token
// (GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE plus
// GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE, see cmd/oauth-init),
// then a service account via GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	base := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if base == "" {
		base = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     yearPrefixedName(base, time.Now().Year()),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readCredential("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := readCredential("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}

	if clientJSON != nil && tokenJSON != nil {
		cfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		tok := &oauth2.Token{}
		if err := json.Unmarshal(tokenJSON, tok); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token")
		return gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, tok)))
	}

	// Fall back to ADC / service account credentials.
	if sa := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); sa != "" {
		credentials, err := os.ReadFile(sa)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentials))
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentials),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	return nil, errors.New("missing Google credentials (set OAuth client+token envs or GOOGLE_APPLICATION_CREDENTIALS)")
}

// readCredential returns inline JSON if set, else the file contents, else nil.
func readCredential(jsonEnv, fileEnv string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonEnv)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileEnv)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}
	return nil, nil
}

// AppendExpense implements ports.ExpenseAppender. One expense becomes one
// row: date, description, amount in dollars, category.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:D", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.SpentAt.Format("2006-01-02 15:04"),
		e.Description,
		e.Amount.Dollars(),
		e.Category,
	}}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Expense appended to sheet",
		"sheets_ref", ref,
		"description", e.Description,
		"amount_cents", e.Amount.Cents)

	return ref, nil
}

// yearPrefixedName returns "2026 Expenses" for base "Expenses", leaving
// bases that already start with a year untouched.
func yearPrefixedName(base string, year int) string {
	prefix := fmt.Sprintf("%d ", year)
	if strings.HasPrefix(base, prefix) {
		return base
	}
	return prefix + base
}
