// internal/gedcom/decode.go
package gedcom

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// famRecord accumulates one FAM record during decoding.
type famRecord struct {
	husband  string
	wife     string
	children []string
}

// Decode parses GEDCOM text into a family graph. It accepts CRLF or LF
// line endings and is best-effort throughout: lines that cannot be used
// are dropped and reported in the skipped list rather than failing the
// parse. The only returned error is a read failure from r.
//
// Record handling follows the lineage-linked structure this package
// emits: level-0 @xref@ lines open INDI or FAM records (other record
// types are skipped together with their bodies), level-1 lines set the
// tag context, and level-2 DATE/PLAC/CONT lines are interpreted against
// the last level-1 tag, so a DATE means birth date under BIRT and death
// date under DEAT. SEX U decodes to an unset gender; "other" is not
// representable in the sex code and degrades the same way.
//
// Relationship reconstruction per FAM: a defined HUSB+WIFE pair becomes
// one spouse edge, and every CHIL becomes one parent-child edge per
// defined parent, so a family with both parents yields two edges per
// child and a single-parent family still links its children.
func Decode(r io.Reader) (Graph, []SkippedLine, error) {
	var (
		g       Graph
		skipped []SkippedLine

		person   *Person  // current INDI, nil otherwise
		fam      *famRecord // current FAM, nil otherwise
		ignoring bool     // inside an unsupported level-0 record
		ctx      string   // last level-1 tag within the current record
		bio      []string // accumulated biography note parts
	)

	fams := []famRecord{}

	flushPerson := func() {
		if person == nil {
			return
		}
		person.Biography = strings.Join(bio, " ")
		g.Persons = append(g.Persons, *person)
		person, bio = nil, nil
	}
	flushFam := func() {
		if fam == nil {
			return
		}
		fams = append(fams, *fam)
		fam = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), "\r")
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		levelStr, rest, _ := strings.Cut(line, " ")
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			skipped = append(skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "malformed line: no level number"})
			continue
		}
		tag, value, _ := strings.Cut(rest, " ")
		if tag == "" {
			skipped = append(skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "malformed line: no tag"})
			continue
		}

		if level == 0 {
			flushPerson()
			flushFam()
			ignoring = false
			ctx = ""

			// Record openers look like "0 @I1@ INDI"; the xref sits in
			// the tag position and the record type in the value.
			if strings.HasPrefix(tag, "@") && strings.HasSuffix(tag, "@") {
				xref := strings.Trim(tag, "@")
				switch value {
				case "INDI":
					person = &Person{ID: xref}
				case "FAM":
					fam = &famRecord{}
				default:
					ignoring = true
					skipped = append(skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unsupported record type " + value})
				}
				continue
			}
			// HEAD, TRLR, and any other bare level-0 record: drop the
			// record and its body without reporting every line.
			ignoring = true
			continue
		}

		if ignoring {
			continue
		}

		switch {
		case person != nil:
			ctx = decodePersonLine(person, &bio, &skipped, lineNum, raw, level, tag, value, ctx)
		case fam != nil:
			ctx = decodeFamLine(fam, &skipped, lineNum, raw, level, tag, value, ctx)
		default:
			skipped = append(skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "line outside any record"})
		}
	}
	if err := scanner.Err(); err != nil {
		return Graph{}, skipped, err
	}

	flushPerson()
	flushFam()

	for _, f := range fams {
		if f.husband != "" && f.wife != "" {
			g.Spouses = append(g.Spouses, Spouse{Spouse1ID: f.husband, Spouse2ID: f.wife})
		}
		for _, child := range f.children {
			if f.husband != "" {
				g.Parents = append(g.Parents, ParentChild{ParentID: f.husband, ChildID: child})
			}
			if f.wife != "" {
				g.Parents = append(g.Parents, ParentChild{ParentID: f.wife, ChildID: child})
			}
		}
	}

	return g, skipped, nil
}

func decodePersonLine(p *Person, bio *[]string, skipped *[]SkippedLine, lineNum int, raw string, level int, tag, value, ctx string) string {
	if level == 1 {
		switch tag {
		case "NAME":
			p.FullName = decodeName(value)
		case "SEX":
			p.Gender = decodeSex(value)
		case "BIRT", "DEAT":
			// Context only; details arrive on level-2 lines.
		case "OCCU":
			p.Occupation = value
		case "NOTE":
			if clan, village, ok := parseClanNote(value); ok {
				p.ClanName = clan
				p.VillageOrigin = village
				return "NOTE_CLAN"
			}
			if value != "" {
				*bio = append(*bio, value)
			}
		default:
			*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unrecognized tag " + tag})
			return ""
		}
		return tag
	}

	// Level 2 and deeper: interpreted relative to the level-1 context.
	switch ctx {
	case "BIRT":
		switch tag {
		case "DATE":
			if d := isoDate(value); d != "" {
				p.DateOfBirth = d
			} else {
				*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unparsable date"})
			}
		case "PLAC":
			p.PlaceOfBirth = value
		default:
			*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unrecognized tag " + tag})
		}
	case "DEAT":
		switch tag {
		case "DATE":
			if d := isoDate(value); d != "" {
				p.DateOfDeath = d
			} else {
				*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unparsable date"})
			}
		case "PLAC":
			p.PlaceOfDeath = value
		default:
			*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unrecognized tag " + tag})
		}
	case "NOTE":
		if tag == "CONT" || tag == "CONC" {
			if value != "" {
				*bio = append(*bio, value)
			}
		} else {
			*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unrecognized tag " + tag})
		}
	default:
		*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "no context for tag " + tag})
	}
	return ctx
}

func decodeFamLine(f *famRecord, skipped *[]SkippedLine, lineNum int, raw string, level int, tag, value, ctx string) string {
	if level != 1 {
		// FAM substructures (marriage events etc.) are not modeled.
		if ctx == "" {
			*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "no context for tag " + tag})
		}
		return ctx
	}
	switch tag {
	case "HUSB":
		f.husband = strings.Trim(value, "@")
	case "WIFE":
		f.wife = strings.Trim(value, "@")
	case "CHIL":
		f.children = append(f.children, strings.Trim(value, "@"))
	default:
		*skipped = append(*skipped, SkippedLine{Line: lineNum, Text: raw, Reason: "unrecognized tag " + tag})
		return ""
	}
	return tag
}

// decodeName splits a NAME value on the /surname/ convention. Without a
// slash pair the whole value is the full name verbatim.
func decodeName(value string) string {
	open := strings.Index(value, "/")
	if open < 0 {
		return strings.TrimSpace(value)
	}
	end := strings.Index(value[open+1:], "/")
	if end < 0 {
		return strings.TrimSpace(value)
	}
	given := strings.TrimSpace(value[:open])
	surname := strings.TrimSpace(value[open+1 : open+1+end])
	if given == "" {
		return surname
	}
	if surname == "" {
		return given
	}
	return given + " " + surname
}

func decodeSex(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "M":
		return "male"
	case "F":
		return "female"
	default:
		return ""
	}
}

// parseClanNote recognizes the "Clan: X; Village: Y" note Encode emits
// for clan and village fields, so they survive a round trip instead of
// polluting the biography.
func parseClanNote(value string) (clan, village string, ok bool) {
	rest, found := strings.CutPrefix(value, "Clan: ")
	if !found {
		return "", "", false
	}
	clan, village, found = strings.Cut(rest, "; Village: ")
	if !found {
		return "", "", false
	}
	return clan, village, true
}
