package ledger

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw   = "RAW"
	renderFormatted = "FORMATTED_VALUE"
)

// Sheets stores rows in a single sheet of a Google spreadsheet. The first row
// is the header; a row's ID is its 1-based row number in the sheet.
type Sheets struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheet         string
}

func NewSheets(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*Sheets, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Sheets{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
	}, nil
}

func (s *Sheets) Append(ctx context.Context, row Row) error {
	vr := &sheets.ValueRange{
		Values: [][]any{{row.Name, row.DateJoined, row.TimeJoined, row.TimeLeft, row.Duration}},
	}
	_, err := s.values.Append(s.spreadsheetID, s.sheet+"!A:E", vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}

func (s *Sheets) Rows(ctx context.Context) ([]Row, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.sheet+"!A:E").
		ValueRenderOption(renderFormatted).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get sheet values: %w", err)
	}

	if len(resp.Values) < 2 { //nolint:mnd // header + at least one row
		return nil, nil
	}

	res := make([]Row, 0, len(resp.Values)-1)
	for i, values := range resp.Values[1:] {
		res = append(res, Row{
			ID:         int64(i + 2), //nolint:mnd // 1-based, after the header
			Name:       cell(values, 0),
			DateJoined: cell(values, 1),
			TimeJoined: cell(values, 2), //nolint:mnd // column C
			TimeLeft:   cell(values, 3), //nolint:mnd // column D
			Duration:   cell(values, 4), //nolint:mnd // column E
		})
	}
	return res, nil
}

func (s *Sheets) Complete(ctx context.Context, id int64, timeLeft, duration string) error {
	if id < 2 { //nolint:mnd // the header is not a session
		return fmt.Errorf("complete sheet row %d: %w", id, ErrRowNotFound)
	}

	vr := &sheets.ValueRange{
		Values: [][]any{{timeLeft, duration}},
	}
	_, err := s.values.Update(s.spreadsheetID, fmt.Sprintf("%s!D%d:E%d", s.sheet, id, id), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update sheet row %d: %w", id, err)
	}
	return nil
}

// EnsureHeader writes the header when the sheet is empty.
func (s *Sheets) EnsureHeader(ctx context.Context) error {
	resp, err := s.values.Get(s.spreadsheetID, s.sheet+"!A1:E1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	_, err = s.values.Update(s.spreadsheetID, s.sheet+"!A1:E1", &sheets.ValueRange{Values: [][]any{header}}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	return nil
}

func cell(values []any, i int) string {
	if i >= len(values) || values[i] == nil {
		return ""
	}
	if s, ok := values[i].(string); ok {
		return s
	}
	return fmt.Sprint(values[i])
}
