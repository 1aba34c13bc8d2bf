package logging

const (
	// FieldComponent names the subsystem emitting a line.
	FieldComponent = "component"
	// FieldRunID carries the identifier of one match run.
	FieldRunID = "run_id"
	// FieldSourceID carries the input source id of a batch.
	FieldSourceID = "source_id"
	// FieldRecord carries the 1-based position of a record in its input file.
	FieldRecord = "record"
	// FieldInputFile carries the path of the batch being matched.
	FieldInputFile = "input_file"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"

	FieldDisposition = "disposition"
	FieldRule        = "rule"
	FieldReason      = "reason"
	FieldEntryID     = "entry_id"
)
