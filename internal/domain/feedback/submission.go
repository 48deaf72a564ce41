package feedback

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Canonical column names, in storage order.
const (
	ColTimestamp       = "timestamp"
	ColUserRating      = "user_rating"
	ColUserReview      = "user_review"
	ColAIUserResponse  = "ai_user_response"
	ColAISummary       = "ai_summary"
	ColAIActions       = "ai_actions"
	MinRating          = 1
	MaxRating          = 5
	PositiveRating     = 4
	MaxReviewRunes     = 500
	TimestampLayout    = time.RFC3339Nano
	DisplayDateLayout  = "02 Jan, 2006"
	ratingStarGlyph    = "★"
	canonicalColumnCnt = 6
)

// Columns returns a fresh copy of the canonical column order.
func Columns() []string {
	return []string{
		ColTimestamp,
		ColUserRating,
		ColUserReview,
		ColAIUserResponse,
		ColAISummary,
		ColAIActions,
	}
}

// Submission is one accepted piece of feedback plus the generated fields.
// It is created once by the submission pipeline and never mutated.
type Submission struct {
	Timestamp       time.Time `json:"timestamp"`
	Rating          int       `json:"user_rating"`
	Review          string    `json:"user_review"`
	PublicReply     string    `json:"ai_user_response"`
	InternalSummary string    `json:"ai_summary"`
	InternalActions string    `json:"ai_actions"`
}

// Row is a stored record as six raw text cells. Rows read back from a
// backend are not trusted to be well formed.
type Row struct {
	Timestamp       string `json:"timestamp"`
	Rating          string `json:"user_rating"`
	Review          string `json:"user_review"`
	PublicReply     string `json:"ai_user_response"`
	InternalSummary string `json:"ai_summary"`
	InternalActions string `json:"ai_actions"`
}

// Row converts s to its stored form. Zero values are written as empty
// cells rather than rejected.
func (s Submission) Row() Row {
	r := Row{
		Review:          s.Review,
		PublicReply:     s.PublicReply,
		InternalSummary: s.InternalSummary,
		InternalActions: s.InternalActions,
	}
	if !s.Timestamp.IsZero() {
		r.Timestamp = s.Timestamp.Format(TimestampLayout)
	}
	if s.Rating != 0 {
		r.Rating = strconv.Itoa(s.Rating)
	}
	return r
}

// Values returns the cells in canonical column order.
func (r Row) Values() []string {
	return []string{r.Timestamp, r.Rating, r.Review, r.PublicReply, r.InternalSummary, r.InternalActions}
}

// RowFromValues maps cells to a Row using header for column positions.
// Unknown headers are ignored and absent columns become empty cells.
func RowFromValues(header []string, values []string) Row {
	var r Row
	for i, name := range header {
		if i >= len(values) {
			break
		}
		v := values[i]
		switch strings.TrimSpace(strings.ToLower(name)) {
		case ColTimestamp:
			r.Timestamp = v
		case ColUserRating:
			r.Rating = v
		case ColUserReview:
			r.Review = v
		case ColAIUserResponse:
			r.PublicReply = v
		case ColAISummary:
			r.InternalSummary = v
		case ColAIActions:
			r.InternalActions = v
		}
	}
	return r
}

// IsCanonicalHeader reports whether header names exactly the six columns in order.
func IsCanonicalHeader(header []string) bool {
	if len(header) != canonicalColumnCnt {
		return false
	}
	for i, c := range Columns() {
		if strings.TrimSpace(header[i]) != c {
			return false
		}
	}
	return true
}

// HasAnyColumn reports whether header contains at least one canonical column name.
func HasAnyColumn(header []string) bool {
	for _, h := range header {
		switch strings.TrimSpace(strings.ToLower(h)) {
		case ColTimestamp, ColUserRating, ColUserReview, ColAIUserResponse, ColAISummary, ColAIActions:
			return true
		}
	}
	return false
}

// ParseRating parses a stored rating cell. Spreadsheet backends may hand
// back "4.0" for an integer cell, so whole floats are accepted.
func ParseRating(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n >= MinRating && n <= MaxRating
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	n := int(f)
	return n, n >= MinRating && n <= MaxRating
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO forms older
// records were written with.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stars renders "r ★…★" for a rating in range.
func Stars(rating int) string {
	if rating < MinRating || rating > MaxRating {
		return strconv.Itoa(rating)
	}
	return strconv.Itoa(rating) + " " + strings.Repeat(ratingStarGlyph, rating)
}

// NormalizeReview trims the review and rewrites CRLF and lone CR line
// breaks as LF, the only form the CSV codec reads back unchanged.
func NormalizeReview(review string) string {
	review = strings.ReplaceAll(review, "\r\n", "\n")
	review = strings.ReplaceAll(review, "\r", "\n")
	return strings.TrimSpace(review)
}

// ReviewLength counts characters the way the form's max length does.
func ReviewLength(review string) int {
	return utf8.RuneCountInString(review)
}
