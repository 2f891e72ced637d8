// Package sheet implements the question row store on top of a Google
// Sheets worksheet.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/manthan/quizbot/internal/poll"
)

var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// Store is a poll.RowStore over the first worksheet of a spreadsheet. Row 1
// is the header; data rows start at 2.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
	sheetID       int64

	mu      sync.RWMutex
	columns map[poll.Column]int // 1-based
}

// CredentialsOptions returns client options for a service account JSON
// bundle with the scopes the store needs.
func CredentialsOptions(credentialsJSON []byte) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope),
	}
}

// Open connects to the spreadsheet by id, or by title when spreadsheetID is
// empty, and self-heals its header row.
func Open(ctx context.Context, spreadsheetID, name string, opts ...option.ClientOption) (*Store, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	if spreadsheetID == "" {
		spreadsheetID, err = findSpreadsheet(ctx, name, opts...)
		if err != nil {
			return nil, err
		}
	}

	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", spreadsheetID)
	}
	props := ss.Sheets[0].Properties

	s := &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         props.Title,
		sheetID:       props.SheetId,
	}
	if err := s.EnsureHeaders(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func findSpreadsheet(ctx context.Context, name string, opts ...option.ClientOption) (string, error) {
	drv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create drive client: %w", err)
	}

	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`))
	res, err := drv.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return res.Files[0].Id, nil
}

func (s *Store) SpreadsheetID() string {
	return s.spreadsheetID
}

// EnsureHeaders appends missing header cells after the existing ones. A blank
// first row gets a header row inserted above it.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rowRange(s.title, 1)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	var current []string
	if len(resp.Values) > 0 {
		current = toStrings(resp.Values[0])
	}

	if isBlank(current) {
		if err := s.insertFirstRow(ctx); err != nil {
			return err
		}
		current = nil
	}

	missing := poll.MissingHeaders(current)
	if len(missing) > 0 {
		cells := make([]interface{}, len(missing))
		for i, h := range missing {
			cells[i] = string(h)
		}
		start := cellRange(s.title, 1, len(current)+1)
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, start, &sheets.ValueRange{
			Values: [][]interface{}{cells},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append headers: %w", err)
		}
		for _, h := range missing {
			current = append(current, string(h))
		}
	}

	columns := make(map[poll.Column]int, len(current))
	for i, h := range current {
		col := poll.Column(strings.TrimSpace(h))
		if _, seen := columns[col]; col != "" && !seen {
			columns[col] = i + 1
		}
	}

	s.mu.Lock()
	s.columns = columns
	s.mu.Unlock()
	return nil
}

func (s *Store) insertFirstRow(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         s.sheetID,
					Dimension:       "ROWS",
					StartIndex:      0,
					EndIndex:        1,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert header row: %w", err)
	}
	return nil
}

// Rows returns every data row in sheet order.
func (s *Store) Rows(ctx context.Context) ([]*poll.Question, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteTitle(s.title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var questions []*poll.Question
	for i := 1; i < len(resp.Values); i++ {
		questions = append(questions, poll.QuestionFromRecord(i+1, s.record(resp.Values[i])))
	}
	return questions, nil
}

func (s *Store) Row(ctx context.Context, row int) (*poll.Question, error) {
	if row < 2 {
		return nil, fmt.Errorf("row %d: %w", row, poll.ErrRowNotFound)
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rowRange(s.title, row)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	var values []interface{}
	if len(resp.Values) > 0 {
		values = resp.Values[0]
	}
	return poll.QuestionFromRecord(row, s.record(values)), nil
}

// UpdateCells writes cells of one row in a single batch request. Values are
// written RAW so long numeric ids stay text.
func (s *Store) UpdateCells(ctx context.Context, row int, cells poll.Record) error {
	if len(cells) == 0 {
		return nil
	}

	cols := make([]string, 0, len(cells))
	for col := range cells {
		cols = append(cols, string(col))
	}
	sort.Strings(cols)

	s.mu.RLock()
	data := make([]*sheets.ValueRange, 0, len(cols))
	for _, name := range cols {
		idx, ok := s.columns[poll.Column(name)]
		if !ok {
			s.mu.RUnlock()
			return fmt.Errorf("unknown column %q", name)
		}
		data = append(data, &sheets.ValueRange{
			Range:  cellRange(s.title, row, idx),
			Values: [][]interface{}{{cells[poll.Column(name)]}},
		})
	}
	s.mu.RUnlock()

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d: %w", row, err)
	}
	return nil
}

func (s *Store) record(values []interface{}) poll.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := make(poll.Record, len(s.columns))
	for col, idx := range s.columns {
		if idx-1 < len(values) {
			rec[col] = cellString(values[idx-1])
		} else {
			rec[col] = ""
		}
	}
	return rec
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cellString(v)
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
