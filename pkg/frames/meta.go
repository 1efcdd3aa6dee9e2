package frames

// Meta keys attached to frames as they move through the pipeline.
const (
	MetaSessionID = "session_id"
	MetaRecording = "recording"
	MetaReason    = "reason"
)
