package excel

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// SheetData represents a header row and the data rows beneath it
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
	Lines   []int        // 1-based sheet line of each data row
}

// Column names with fixed meaning in a plan sheet. Every other non-empty
// column is an effect input for the row's calculator.
const (
	ColumnLabel       = "label"
	ColumnKind        = "kind"
	ColumnAlpha       = "alpha"
	ColumnPower       = "power"
	ColumnTwoSided    = "two_sided"
	ColumnDropoutRate = "dropout_rate"
)

// PlanSheet is the sheet read from .xlsx plans; ResultsSheet is written
const (
	PlanSheet    = "Plan"
	ResultsSheet = "Results"
)

var designColumns = map[string]bool{
	ColumnAlpha:       true,
	ColumnPower:       true,
	ColumnTwoSided:    true,
	ColumnDropoutRate: true,
}
