package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"troskovi/internal/core"
	ports "troskovi/internal/sheets"
)

// Client appends finance records to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	incomesSheet  string
}

var _ ports.RowAppender = (*Client)(nil)

// Config carries the spreadsheet coordinates and service-account
// credentials. Exactly one of CredentialsJSON and CredentialsFile must be
// set.
type Config struct {
	SpreadsheetID   string
	ExpensesSheet   string
	IncomesSheet    string
	CredentialsJSON string
	CredentialsFile string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	expensesSheet := cfg.ExpensesSheet
	if expensesSheet == "" {
		expensesSheet = "Expenses"
	}
	incomesSheet := cfg.IncomesSheet
	if incomesSheet == "" {
		incomesSheet = "Incomes"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		expensesSheet: expensesSheet,
		incomesSheet:  incomesSheet,
	}, nil
}

func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	row := []any{
		e.PurchaseDate.Format("2006-01-02"),
		e.ShopName,
		e.ProductDescription,
		e.Category,
		e.Amount,
		string(e.OriginalCurrency),
		e.EurAmount,
		e.RsdAmount,
		e.PaymentMethod,
		strings.Join(e.Tags, ", "),
		e.CreatedBy,
		string(e.CreationMethod),
		e.ID,
	}
	return c.appendRow(ctx, c.expensesSheet, row)
}

func (c *Client) AppendIncome(ctx context.Context, in core.Income) error {
	row := []any{
		in.DateReceived.Format("2006-01-02"),
		in.Source,
		in.Description,
		in.IncomeType,
		in.Amount,
		string(in.OriginalCurrency),
		in.EurAmount,
		in.RsdAmount,
		in.CreatedBy,
		string(in.CreationMethod),
		in.ID,
	}
	return c.appendRow(ctx, c.incomesSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) error {
	rng := fmt.Sprintf("%s!A:A", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to sheet %s: %w", sheet, err)
	}
	return nil
}
