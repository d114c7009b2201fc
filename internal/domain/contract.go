package domain

import "time"

// Contract is the searchable unit: one business contract.
// The engine treats contracts as a read-only snapshot owned by the caller.
type Contract struct {
	ID          string
	Title       string
	PartyA      string
	PartyB      string
	Description string
	Category    string
	Branch      string
	Notes       string
	Value       float64
	SignedAt    time.Time
	Active      bool
}

// Field identifiers for the per-field index view and highlighting.
const (
	FieldTitle       = "title"
	FieldPartyA      = "party_a"
	FieldPartyB      = "party_b"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldBranch      = "branch"
	FieldNotes       = "notes"
)

// TextFields lists the searchable text fields in display order.
var TextFields = []string{
	FieldTitle,
	FieldPartyA,
	FieldPartyB,
	FieldDescription,
	FieldCategory,
	FieldBranch,
	FieldNotes,
}

// TextField returns the named text field of the contract.
// Unknown names return the empty string.
func (c Contract) TextField(name string) string {
	switch name {
	case FieldTitle:
		return c.Title
	case FieldPartyA:
		return c.PartyA
	case FieldPartyB:
		return c.PartyB
	case FieldDescription:
		return c.Description
	case FieldCategory:
		return c.Category
	case FieldBranch:
		return c.Branch
	case FieldNotes:
		return c.Notes
	}
	return ""
}
