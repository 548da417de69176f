package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/logging"
)

var exportHeader = []string{"Title", "Contact Number", "Website", "Snippet", "Email", "Search Phrase", "Category"}

type SheetsExportInput struct {
	SearchResults *entity.SearchResults `json:"searchResults"`
	SearchPhrase  string                `json:"searchPhrase"`
	Category      string                `json:"category"`
}

type SheetsExportOutput struct {
	Message        string `json:"message"`
	SheetName      string `json:"sheetName"`
	RowCount       int    `json:"rowCount"`
	SpreadsheetURL string `json:"spreadsheetUrl"`
}

// ExportUseCase writes search results to a spreadsheet tab or to CSV.
type ExportUseCase struct {
	Sheets              SpreadsheetClient
	SpreadsheetID       string
	ServiceAccountEmail string
	LastSearch          entity.LastSearchRepository
}

func NewExportUseCase(sheets SpreadsheetClient, spreadsheetID, serviceAccountEmail string, last entity.LastSearchRepository) *ExportUseCase {
	return &ExportUseCase{
		Sheets:              sheets,
		SpreadsheetID:       spreadsheetID,
		ServiceAccountEmail: serviceAccountEmail,
		LastSearch:          last,
	}
}

// ExportRows renders one row per result, header first.
func ExportRows(results []entity.OrganicResult, searchPhrase, category string) [][]string {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, exportHeader)
	for _, r := range results {
		email := ExtractEmail(r.Snippet)
		if email == "" {
			email = ExtractEmail(r.Link)
		}
		if email == "" {
			email = ExtractEmail(r.Title)
		}
		phone := r.Phone
		if phone == "" {
			phone = "N/A"
		}
		rows = append(rows, []string{r.Title, phone, r.Link, r.Snippet, email, searchPhrase, category})
	}
	return rows
}

// SaveToSheets creates the tab named after the search phrase, or clears it
// when it exists, and writes the rows from A1.
func (uc *ExportUseCase) SaveToSheets(ctx context.Context, in SheetsExportInput) (*SheetsExportOutput, error) {
	if in.SearchResults == nil || in.SearchResults.Organic == nil {
		return nil, validationError("Invalid search results data")
	}
	if in.SearchPhrase == "" {
		return nil, validationError("Search phrase is required")
	}
	if uc.SpreadsheetID == "" {
		return nil, &DomainError{
			Code:    CodeNotConfigured,
			Message: "Google Sheets not configured. Please set GOOGLE_SHEETS_SPREADSHEET_ID in .env file",
		}
	}
	if uc.Sheets == nil {
		return nil, &DomainError{
			Code:    CodeNotConfigured,
			Message: "Google Sheets authentication not configured. Please set GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_PRIVATE_KEY in .env file",
		}
	}

	sheetName := SanitizeSheetName(in.SearchPhrase)
	rows := ExportRows(in.SearchResults.Organic, in.SearchPhrase, in.Category)

	titles, err := uc.Sheets.SheetTitles(ctx, uc.SpreadsheetID)
	if err != nil {
		return nil, uc.accessError(err, false)
	}
	if slices.Contains(titles, sheetName) {
		err = uc.Sheets.ClearRange(ctx, uc.SpreadsheetID, sheetName+"!A1:Z10000")
	} else {
		err = uc.Sheets.AddSheet(ctx, uc.SpreadsheetID, sheetName)
	}
	if err != nil {
		return nil, uc.accessError(err, false)
	}

	if err := uc.Sheets.UpdateValues(ctx, uc.SpreadsheetID, sheetName+"!A1", rows); err != nil {
		return nil, uc.accessError(err, true)
	}

	logging.Ctx(ctx).Info().Str("sheet", sheetName).Int("rows", len(rows)-1).Msg("search results exported to Google Sheets")

	return &SheetsExportOutput{
		Message:        "Search results saved to Google Sheets successfully",
		SheetName:      sheetName,
		RowCount:       len(rows) - 1,
		SpreadsheetURL: "https://docs.google.com/spreadsheets/d/" + uc.SpreadsheetID,
	}, nil
}

func (uc *ExportUseCase) accessError(err error, writing bool) error {
	email := uc.ServiceAccountEmail
	switch statusCodeOf(err) {
	case http.StatusNotFound:
		if !writing {
			return &DomainError{
				Code:    CodeNotFound,
				Message: "Google Spreadsheet not found. Please check the GOOGLE_SHEETS_SPREADSHEET_ID.",
				Details: "Make sure the Spreadsheet ID in your .env file matches the ID in your Google Sheets URL.",
			}
		}
	case http.StatusForbidden:
		if writing {
			return &DomainError{
				Code:    CodeAccessDenied,
				Message: "Access denied when writing to sheet.",
				Details: fmt.Sprintf("The service account %s needs Editor access to write data.", email),
				Instructions: []string{
					"1. Make sure you shared the spreadsheet with the service account email",
					"2. Service account email: " + email,
					`3. Permission must be "Editor" (not Viewer or Commenter)`,
					"4. Wait a few seconds after sharing for permissions to propagate",
					"5. Try again",
				},
			}
		}
		return &DomainError{
			Code:    CodeAccessDenied,
			Message: "Access denied. Please ensure the service account has access to the spreadsheet.",
			Details: "Share your Google Spreadsheet with this email address: " + email,
			Instructions: []string{
				"1. Open your Google Spreadsheet",
				`2. Click the "Share" button (top right)`,
				"3. Add this email: " + email,
				`4. Give it "Editor" access`,
				`5. Click "Send" or "Share"`,
				"6. Try saving again",
			},
		}
	}

	msg := err.Error()
	te := &TechnicalError{Code: CodeExternal, Message: "Error saving to Google Sheets", Details: msg, Err: err}
	switch {
	case strings.Contains(msg, "invalid_grant"):
		te.Message = "Authentication failed"
		te.Details = "The private key or service account email is incorrect. Please check your .env file."
	case strings.Contains(msg, "API has not been used"):
		te.Message = "Google Sheets API not enabled"
		te.Details = "Please enable the Google Sheets API in your Google Cloud Console project."
	}
	return te
}

// LastSearchCSV renders the last search as CSV and names the file after its phrase.
func (uc *ExportUseCase) LastSearchCSV(ctx context.Context) (string, []byte, error) {
	last, err := uc.LastSearch.Get(ctx)
	if err != nil {
		return "", nil, storageError("read last search", err)
	}
	if last.Results == nil {
		return "", nil, notFoundError("No search results to export")
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(ExportRows(last.Results.Organic, last.Search, last.Category)); err != nil {
		return "", nil, fmt.Errorf("failed to write csv: %w", err)
	}
	name := strings.ReplaceAll(strings.ToLower(SanitizeSheetName(last.Search)), " ", "_") + ".csv"
	return name, buf.Bytes(), nil
}
