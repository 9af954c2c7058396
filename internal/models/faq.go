package models

// FAQEntry is a pre-populated question/answer pair loaded out of band.
// Lookups match the question text exactly; entries are never mutated here.
type FAQEntry struct {
	ID       int64  `json:"id"`
	Subfield string `json:"subfield"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
