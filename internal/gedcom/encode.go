// internal/gedcom/encode.go
package gedcom

import (
	"fmt"
	"strings"
)

// noteWrapLimit is the soft line limit for biography NOTE values. Wraps
// happen on word boundaries, so a single overlong word may exceed it.
const noteWrapLimit = 200

// header is the fixed preamble emitted at the top of every export.
var header = []string{
	"0 HEAD",
	"1 SOUR UMUNNA",
	"2 VERS 1.0",
	"1 GEDC",
	"2 VERS 5.5.5",
	"2 FORM LINEAGE-LINKED",
	"1 CHAR UTF-8",
}

// Encode renders a family graph as GEDCOM 5.5.5 text: header, blank
// line, one INDI record per person (in input order, with sequential
// @I1@.. xrefs), one FAM record per spouse edge (in insertion order),
// and the trailer. Lines are LF-joined.
//
// Children attach to the first FAM unit whose spouse pair covers all of
// the child's recorded parents. A child whose two parents are not
// spouses of each other therefore appears in no FAM child list, and a
// child with only single-parent edges appears only if that parent is
// part of a spouse pair. This mirrors what the FAM structure can
// express; the dropped links are a documented limitation of the format,
// not something Encode tries to repair.
func Encode(g Graph) string {
	xrefs := make(map[string]string, len(g.Persons))
	for i, p := range g.Persons {
		xrefs[p.ID] = fmt.Sprintf("I%d", i+1)
	}

	lines := append([]string{}, header...)
	lines = append(lines, "")

	for _, p := range g.Persons {
		lines = appendPerson(lines, p, xrefs[p.ID])
	}

	for i, fam := range buildFamilies(g) {
		lines = appendFamily(lines, fam, i+1, xrefs)
	}

	lines = append(lines, "0 TRLR")
	return strings.Join(lines, "\n") + "\n"
}

func appendPerson(lines []string, p Person, xref string) []string {
	lines = append(lines, fmt.Sprintf("0 @%s@ INDI", xref))

	if name := strings.TrimSpace(p.FullName); name != "" {
		if given, surname, ok := strings.Cut(name, " "); ok {
			lines = append(lines, fmt.Sprintf("1 NAME %s /%s/", given, strings.TrimSpace(surname)))
		} else {
			lines = append(lines, "1 NAME "+name)
		}
	}

	lines = append(lines, "1 SEX "+sexCode(p.Gender))
	lines = appendEvent(lines, "BIRT", p.DateOfBirth, p.PlaceOfBirth)
	lines = appendEvent(lines, "DEAT", p.DateOfDeath, p.PlaceOfDeath)

	if p.Occupation != "" {
		lines = append(lines, "1 OCCU "+p.Occupation)
	}

	if bio := strings.TrimSpace(p.Biography); bio != "" {
		for i, chunk := range wrapNote(bio, noteWrapLimit) {
			if i == 0 {
				lines = append(lines, "1 NOTE "+chunk)
			} else {
				lines = append(lines, "2 CONT "+chunk)
			}
		}
	}

	if p.ClanName != "" || p.VillageOrigin != "" {
		lines = append(lines, fmt.Sprintf("1 NOTE Clan: %s; Village: %s", p.ClanName, p.VillageOrigin))
	}

	return lines
}

// appendEvent emits a BIRT or DEAT block. The DATE line is omitted when
// the stored date fails to parse; the whole block is omitted when
// neither a usable date nor a place exists.
func appendEvent(lines []string, tag, date, place string) []string {
	d := gedcomDate(date)
	if d == "" && place == "" {
		return lines
	}
	lines = append(lines, "1 "+tag)
	if d != "" {
		lines = append(lines, "2 DATE "+d)
	}
	if place != "" {
		lines = append(lines, "2 PLAC "+place)
	}
	return lines
}

func sexCode(gender string) string {
	switch gender {
	case "male":
		return "M"
	case "female":
		return "F"
	default:
		return "U"
	}
}

// wrapNote splits text into word-wrapped chunks no longer than limit,
// except that a single word longer than limit becomes its own chunk.
func wrapNote(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) > limit {
			chunks = append(chunks, current)
			current = w
			continue
		}
		current += " " + w
	}
	return append(chunks, current)
}

// famUnit is one synthetic FAM record under construction.
type famUnit struct {
	husband  string
	wife     string
	children []string
}

// buildFamilies groups spouse edges into FAM units and attaches
// children. HUSB goes to the male partner; when neither partner is
// recorded male the first-listed spouse takes HUSB.
func buildFamilies(g Graph) []famUnit {
	gender := make(map[string]string, len(g.Persons))
	for _, p := range g.Persons {
		gender[p.ID] = p.Gender
	}

	fams := make([]famUnit, 0, len(g.Spouses))
	for _, s := range g.Spouses {
		f := famUnit{husband: s.Spouse1ID, wife: s.Spouse2ID}
		if gender[s.Spouse2ID] == "male" && gender[s.Spouse1ID] != "male" {
			f.husband, f.wife = s.Spouse2ID, s.Spouse1ID
		}
		fams = append(fams, f)
	}

	parentsOf := make(map[string][]string)
	for _, pc := range g.Parents {
		parentsOf[pc.ChildID] = append(parentsOf[pc.ChildID], pc.ParentID)
	}

	for _, p := range g.Persons {
		parents := parentsOf[p.ID]
		if len(parents) == 0 {
			continue
		}
		for i := range fams {
			if coversAll(fams[i], parents) {
				fams[i].children = append(fams[i].children, p.ID)
				break
			}
		}
	}

	return fams
}

// coversAll reports whether every parent is one of the unit's spouses.
func coversAll(f famUnit, parents []string) bool {
	for _, id := range parents {
		if id != f.husband && id != f.wife {
			return false
		}
	}
	return true
}

func appendFamily(lines []string, f famUnit, n int, xrefs map[string]string) []string {
	lines = append(lines, fmt.Sprintf("0 @F%d@ FAM", n))
	if x, ok := xrefs[f.husband]; ok {
		lines = append(lines, fmt.Sprintf("1 HUSB @%s@", x))
	}
	if x, ok := xrefs[f.wife]; ok {
		lines = append(lines, fmt.Sprintf("1 WIFE @%s@", x))
	}
	for _, c := range f.children {
		if x, ok := xrefs[c]; ok {
			lines = append(lines, fmt.Sprintf("1 CHIL @%s@", x))
		}
	}
	return lines
}
