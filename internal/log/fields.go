package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldTransaction = "transaction_id"
	FieldWallet      = "wallet_id"
	FieldCategory    = "category_id"
	FieldAmount      = "amount"
	FieldType        = "type"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldTranscript  = "transcript"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentParse   = "parse"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
)
