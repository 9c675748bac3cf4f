// Package gedcom converts between an in-memory family graph and GEDCOM
// 5.5.5 lineage-linked text. Encode and Decode are pure: they touch no
// database and hold no state between calls.
//
// The dialect is deliberately narrow. Encode emits only the record
// types this service stores (INDI, FAM, and the header/trailer), and
// Decode reads those back while skipping everything else. Decoding is
// best-effort: malformed lines, unknown record types, and unparsable
// dates are dropped rather than raised, and every drop is reported in
// the returned SkippedLine list so callers can surface them.
package gedcom

// Person is one individual in a transient import/export graph. ID is a
// locally scoped key (a database id on encode, a parsed xref such as
// "I1" on decode); it carries no meaning outside one call.
type Person struct {
	ID       string
	FullName string
	Gender   string // "male", "female", "other", or ""

	DateOfBirth  string // ISO YYYY-MM-DD when parsable; verbatim otherwise
	DateOfDeath  string
	PlaceOfBirth string
	PlaceOfDeath string

	Occupation    string
	Biography     string
	ClanName      string
	VillageOrigin string
}

// ParentChild is one directed parent-child edge between graph persons.
type ParentChild struct {
	ParentID string
	ChildID  string
}

// Spouse is one undirected spouse edge between graph persons.
type Spouse struct {
	Spouse1ID string
	Spouse2ID string
}

// Graph is the unit Encode consumes and Decode produces. Edge order is
// significant to Encode: spouse edges become FAM units in insertion
// order, and children attach to the first eligible unit.
type Graph struct {
	Persons []Person
	Parents []ParentChild
	Spouses []Spouse
}

// SkippedLine reports one input line Decode dropped, with its 1-based
// line number and the reason it could not be used.
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}
