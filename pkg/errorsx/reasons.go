package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonVADClassify ReasonCode = "vad_classify"

	ReasonASRTranscribe   ReasonCode = "asr_transcribe"
	ReasonASRRetry        ReasonCode = "asr_retry"
	ReasonASRRateLimit    ReasonCode = "asr_rate_limit"
	ReasonASRCircuitOpen  ReasonCode = "asr_circuit_open"
	ReasonASREmptyOutput  ReasonCode = "asr_empty_output"
	ReasonAudioEncode     ReasonCode = "audio_encode"
	ReasonCaptureOpen     ReasonCode = "capture_open"
	ReasonCaptureStream   ReasonCode = "capture_stream"
	ReasonStoreConnect    ReasonCode = "store_connect"
	ReasonStoreInsert     ReasonCode = "store_insert"
	ReasonStoreQuery      ReasonCode = "store_query"
	ReasonExportWrite     ReasonCode = "export_write"
	ReasonSinkBroadcast   ReasonCode = "sink_broadcast"
	ReasonQueueOverflow   ReasonCode = "queue_overflow"
	ReasonConfigInvalid   ReasonCode = "config_invalid"
	ReasonSessionShutdown ReasonCode = "session_shutdown"
)
