package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

// fakeSheetsAPI serves the handful of Sheets and Drive endpoints the store uses.
type fakeSheetsAPI struct {
	mu         sync.Mutex
	worksheets []string
	rows       [][]interface{}
	appends    int
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/drive/v3/files"):
		writeJSON(w, map[string]any{"files": []map[string]any{{"id": "sheet-1", "name": DefaultSpreadsheetTitle}}})
	case path == "/v4/spreadsheets/sheet-1" && r.Method == http.MethodGet:
		var sheets []map[string]any
		for _, title := range f.worksheets {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1", "sheets": sheets})
	case path == "/v4/spreadsheets/sheet-1:batchUpdate":
		var req gsheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.worksheets = append(f.worksheets, rq.AddSheet.Properties.Title)
			}
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1"})
	case strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/") && strings.HasSuffix(path, ":append"):
		var vr gsheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		f.appends++
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1"})
	case strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/") && r.Method == http.MethodPut:
		var vr gsheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		if len(f.rows) == 0 {
			f.rows = append(f.rows, vr.Values[0])
		} else {
			f.rows[0] = vr.Values[0]
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1"})
	case strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/"):
		rng := strings.TrimPrefix(path, "/v4/spreadsheets/sheet-1/values/")
		values := f.rows
		if strings.HasSuffix(rng, "!1:1") && len(values) > 1 {
			values = values[:1]
		}
		out := map[string]any{"range": rng, "majorDimension": "ROWS"}
		if len(values) > 0 {
			out["values"] = values
		}
		writeJSON(w, out)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestStore(t *testing.T, api *fakeSheetsAPI, cfg Config) *Store {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	ctx := context.Background()
	svc, err := gsheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	drv, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/drive/v3/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	s, err := NewWithServices(logger.Nop(), cfg, svc, drv)
	require.NoError(t, err)
	return s
}

func TestInitializeCreatesWorksheetAndHeader(t *testing.T) {
	api := &fakeSheetsAPI{worksheets: []string{"Sheet1"}}
	s := newTestStore(t, api, Config{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	assert.Equal(t, []string{"Sheet1", DefaultWorksheet}, api.worksheets)
	require.Len(t, api.rows, 1)
	assert.Equal(t, toStrings(api.rows[0]), feedback.Columns())

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, feedback.Columns(), tbl.Columns)
}

func TestAppendThenLoadAll(t *testing.T) {
	api := &fakeSheetsAPI{worksheets: []string{DefaultWorksheet}}
	s := newTestStore(t, api, Config{SpreadsheetID: "sheet-1"})
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	sub := feedback.Submission{
		Timestamp:       time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC),
		Rating:          4,
		Review:          "Nice staff",
		PublicReply:     "Thanks for visiting!",
		InternalSummary: "Positive staff feedback.",
		InternalActions: "Recognize staff, Keep hours, Ask for review",
	}
	require.NoError(t, s.Append(ctx, sub))
	assert.Equal(t, 1, api.appends)

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, sub.Row(), tbl.Rows[0])
}

func TestLoadAllRaggedRows(t *testing.T) {
	header := toCells(feedback.Columns())
	api := &fakeSheetsAPI{
		worksheets: []string{DefaultWorksheet},
		rows: [][]interface{}{
			header,
			{"2024-01-01T00:00:00Z", 3.0, "short row"},
		},
	}
	s := newTestStore(t, api, Config{SpreadsheetID: "sheet-1"})

	tbl, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "3", tbl.Rows[0].Rating)
	assert.Equal(t, "short row", tbl.Rows[0].Review)
	assert.Equal(t, "", tbl.Rows[0].InternalActions)
}

func TestNewWithServicesRequiresDriveForTitleLookup(t *testing.T) {
	_, err := NewWithServices(logger.Nop(), Config{}, &gsheets.Service{}, nil)
	assert.Error(t, err)
}
