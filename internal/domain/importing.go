package domain

// ImportRow is one data row of a contact import file: (name, phone, source).
type ImportRow struct {
	Name   string
	Phone  string
	Source string
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
