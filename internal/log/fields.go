package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldUserID    = "user_id"
	FieldUserEmail = "user_email"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldSymbol    = "symbol"
	FieldMessageID = "message_id"
	FieldRunDate   = "run_date"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentSummary = "summary"
	ComponentNotify  = "notify"
	ComponentMail    = "mail"
	ComponentScrape  = "scrape"
)

// Operations defines standard operation names
const (
	OpRetrieve = "retrieve"
	OpDeliver  = "deliver"
	OpIngest   = "ingest"
	OpUpdate   = "update"
	OpParse    = "parse"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithUser adds user identity fields
func (f LogFields) WithUser(id int64, email string) LogFields {
	f[FieldUserID] = id
	f[FieldUserEmail] = email
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
