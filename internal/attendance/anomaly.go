package attendance

// AnomalyKind classifies data the aggregations could not use as-is.
type AnomalyKind string

const (
	// AnomalyUnknownStatus marks a record whose status is not present, absent or late.
	AnomalyUnknownStatus AnomalyKind = "unknown_status"
	// AnomalyDuplicateRecord marks a second record for the same student and day.
	AnomalyDuplicateRecord AnomalyKind = "duplicate_record"
)

// Anomaly describes one skipped or superseded attendance record.
type Anomaly struct {
	RecordID  string      `json:"record_id"`
	StudentID string      `json:"student_id"`
	Date      string      `json:"date"`
	Kind      AnomalyKind `json:"kind"`
	Value     string      `json:"value"`
}
