// Package sheets stores submissions as rows of a Google Sheets worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

const (
	DefaultSpreadsheetTitle = "FyndFeedbackSubmissions"
	DefaultWorksheet        = "Submissions"
	spreadsheetMimeType     = "application/vnd.google-apps.spreadsheet"
)

var ErrSpreadsheetNotFound = errors.New("sheets: spreadsheet not found")

type Config struct {
	// SpreadsheetID wins over SpreadsheetTitle when both are set.
	SpreadsheetID    string
	SpreadsheetTitle string
	Worksheet        string
}

func (c Config) withDefaults() Config {
	c.SpreadsheetID = strings.TrimSpace(c.SpreadsheetID)
	c.SpreadsheetTitle = strings.TrimSpace(c.SpreadsheetTitle)
	c.Worksheet = strings.TrimSpace(c.Worksheet)
	if c.SpreadsheetTitle == "" {
		c.SpreadsheetTitle = DefaultSpreadsheetTitle
	}
	if c.Worksheet == "" {
		c.Worksheet = DefaultWorksheet
	}
	return c
}

type Store struct {
	log    *logger.Logger
	cfg    Config
	sheets *gsheets.Service
	drive  *drive.Service

	spreadsheetID string
}

// New dials the Sheets and Drive APIs with opts. Credentials are the
// caller's concern.
func New(ctx context.Context, log *logger.Logger, cfg Config, opts ...option.ClientOption) (*Store, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	drv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithServices(log, cfg, svc, drv)
}

func NewWithServices(log *logger.Logger, cfg Config, svc *gsheets.Service, drv *drive.Service) (*Store, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if svc == nil {
		return nil, errors.New("sheets service required")
	}
	cfg = cfg.withDefaults()
	if cfg.SpreadsheetID == "" && drv == nil {
		return nil, errors.New("drive service required to resolve spreadsheet by title")
	}
	return &Store{
		log:           log.With("store", "sheets", "worksheet", cfg.Worksheet),
		cfg:           cfg,
		sheets:        svc,
		drive:         drv,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

func (s *Store) Name() string { return "sheets" }

// resolve looks the spreadsheet up by title the first time it is needed.
func (s *Store) resolve(ctx context.Context) (string, error) {
	if s.spreadsheetID != "" {
		return s.spreadsheetID, nil
	}
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(s.cfg.SpreadsheetTitle, "'", `\'`), spreadsheetMimeType)
	res, err := s.drive.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("find spreadsheet %q: %w", s.cfg.SpreadsheetTitle, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, s.cfg.SpreadsheetTitle)
	}
	s.spreadsheetID = res.Files[0].Id
	s.log.Info("Resolved spreadsheet", "title", s.cfg.SpreadsheetTitle, "spreadsheet_id", s.spreadsheetID)
	return s.spreadsheetID, nil
}

func (s *Store) a1(suffix string) string {
	name := "'" + strings.ReplaceAll(s.cfg.Worksheet, "'", "''") + "'"
	if suffix == "" {
		return name
	}
	return name + "!" + suffix
}

func (s *Store) Initialize(ctx context.Context) error {
	id, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	meta, err := s.sheets.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	found := false
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.cfg.Worksheet {
			found = true
			break
		}
	}
	if !found {
		req := &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{Title: s.cfg.Worksheet},
				},
			}},
		}
		if _, err := s.sheets.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add worksheet: %w", err)
		}
		s.log.Info("Created worksheet")
	}

	head, err := s.sheets.Spreadsheets.Values.Get(id, s.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	if len(head.Values) > 0 && len(head.Values[0]) > 0 {
		return nil
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(feedback.Columns())}}
	if _, err := s.sheets.Spreadsheets.Values.Update(id, s.a1("A1:F1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	s.log.Info("Wrote header row")
	return nil
}

func (s *Store) Append(ctx context.Context, sub feedback.Submission) error {
	id, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	cells := toCells(sub.Row().Values())
	// Keep the rating numeric in the sheet.
	if sub.Rating != 0 {
		cells[1] = sub.Rating
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{cells}}
	if _, err := s.sheets.Spreadsheets.Values.Append(id, s.a1("A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *Store) LoadAll(ctx context.Context) (store.Table, error) {
	id, err := s.resolve(ctx)
	if err != nil {
		return store.Table{}, err
	}
	res, err := s.sheets.Spreadsheets.Values.Get(id, s.a1("")).Context(ctx).Do()
	if err != nil {
		return store.Table{}, fmt.Errorf("read worksheet: %w", err)
	}
	out := store.EmptyTable()
	if len(res.Values) == 0 {
		return out, nil
	}
	header := toStrings(res.Values[0])
	if !feedback.HasAnyColumn(header) {
		return store.Table{}, store.ErrMalformedHeader
	}
	for _, raw := range res.Values[1:] {
		vals := toStrings(raw)
		if len(vals) == 0 {
			continue
		}
		out.Rows = append(out.Rows, feedback.RowFromValues(header, vals))
	}
	return out, nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
