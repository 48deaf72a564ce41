package feedback

// Record is the SQL shape of a stored Row. Cells stay text so the table
// holds exactly what the other backends hold.
type Record struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp      string `gorm:"column:timestamp;type:text;not null;default:''" json:"timestamp"`
	UserRating     string `gorm:"column:user_rating;type:text;not null;default:''" json:"user_rating"`
	UserReview     string `gorm:"column:user_review;type:text;not null;default:''" json:"user_review"`
	AIUserResponse string `gorm:"column:ai_user_response;type:text;not null;default:''" json:"ai_user_response"`
	AISummary      string `gorm:"column:ai_summary;type:text;not null;default:''" json:"ai_summary"`
	AIActions      string `gorm:"column:ai_actions;type:text;not null;default:''" json:"ai_actions"`
}

func (Record) TableName() string { return "submissions" }

func RecordFromRow(r Row) *Record {
	return &Record{
		Timestamp:      r.Timestamp,
		UserRating:     r.Rating,
		UserReview:     r.Review,
		AIUserResponse: r.PublicReply,
		AISummary:      r.InternalSummary,
		AIActions:      r.InternalActions,
	}
}

func (r *Record) Row() Row {
	return Row{
		Timestamp:       r.Timestamp,
		Rating:          r.UserRating,
		Review:          r.UserReview,
		PublicReply:     r.AIUserResponse,
		InternalSummary: r.AISummary,
		InternalActions: r.AIActions,
	}
}
