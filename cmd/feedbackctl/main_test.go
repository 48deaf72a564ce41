package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/services"
	"github.com/yungbote/feedback-backend/internal/store"
)

func sampleTable() store.Table {
	tbl := store.EmptyTable()
	tbl.Rows = append(tbl.Rows,
		feedback.Row{Timestamp: "2024-03-05T10:00:00Z", Rating: "5", Review: "Great, really", PublicReply: "Thanks", InternalSummary: "Happy", InternalActions: "A, B, C"},
		feedback.Row{Timestamp: "2024-03-06T08:15:00Z", Rating: "2", Review: "Cold", PublicReply: "Sorry", InternalSummary: "Food temp", InternalActions: "X, Y, Z"},
	)
	return tbl
}

func TestWriteExportCSVRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, sampleTable(), "csv"))
	assert.True(t, strings.HasPrefix(buf.String(), "timestamp,user_rating,user_review,ai_user_response,ai_summary,ai_actions\n"))

	back, err := store.ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTable().Rows, back.Rows)
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, sampleTable(), "JSON"))

	var got store.Table
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, feedback.Columns(), got.Columns)
	assert.Len(t, got.Rows, 2)
}

func TestWriteExportUnknownFormat(t *testing.T) {
	assert.Error(t, writeExport(&bytes.Buffer{}, sampleTable(), "xml"))
}

func TestWriteReport(t *testing.T) {
	rep := services.BuildReport(sampleTable(), 4, time.Time{})

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, false))
	out := buf.String()
	assert.Contains(t, out, "Average rating: 3.5")
	assert.Contains(t, out, "Total submissions: 2")
	assert.Contains(t, out, "Positive (4+): 1")
	assert.Contains(t, out, "Great, really")
	assert.NotContains(t, out, "Cold")

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, true))
	assert.Contains(t, buf.String(), "A, B, C")
}

func TestSubmitCommandAgainstCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.csv")
	t.Setenv("FEEDBACK_CONFIG", "")
	t.Setenv("STORAGE_BACKEND", "csv")
	t.Setenv("CSV_PATH", path)
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"submit", "--rating", "5", "Great service!"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), services.PositiveFallback.PublicReply)

	out.Reset()
	rootCmd.SetArgs([]string{"export", "--format", "csv"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Great service!")
}
