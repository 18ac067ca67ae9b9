// Package dataset turns the raw HEP-PH citation dataset (a paper publication
// date file and a citation file) into per-year edge files that can be consumed
// by the edge loader.
package dataset

import (
	"bufio"
	"io"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

const (
	// FirstYear is the first year for which edge files are produced.
	FirstYear = 1992

	// LastYear is the last year for which edge files are produced.
	LastYear = 2002

	// Paper identifiers are 7 digits long; the raw files drop leading zeros.
	paperIDLength = 7

	// Dated identifiers with this prefix refer to cross-listed papers.
	crossListPrefix = "11"

	dateLayout = "2006-01-02"
)

// ErrMalformedRecord is returned when a line of the raw dataset cannot be
// parsed.
var ErrMalformedRecord = xerrors.New("malformed dataset record")

// Edge is a citation from a citing paper to a cited paper.
type Edge struct {
	Src string
	Dst string
}

// Index holds the publication dates and the accepted citations of the raw
// dataset.
type Index struct {
	dates      map[string]time.Time
	yearPapers map[int][]string
	citations  map[string][]string
	skipped    int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		dates:      make(map[string]time.Time),
		yearPapers: make(map[int][]string),
		citations:  make(map[string][]string),
	}
}

// ReadDates parses a "paper date" file where dates use the YYYY-MM-DD
// format. Comment lines starting with '#' and blank lines are ignored.
func (ix *Index) ReadDates(r io.Reader) error {
	return scanRecords(r, func(lineNum int, fields []string) error {
		date, err := time.Parse(dateLayout, fields[1])
		if err != nil {
			return xerrors.Errorf("line %d: %v: %w", lineNum, err, ErrMalformedRecord)
		}

		paper := fields[0]
		if strings.HasPrefix(paper, crossListPrefix) {
			paper = paper[len(crossListPrefix):]
		}
		paper = padPaperID(paper)

		ix.dates[paper] = date
		ix.yearPapers[date.Year()] = append(ix.yearPapers[date.Year()], paper)
		return nil
	})
}

// ReadCitations parses a "citing cited" file. It must be invoked after
// ReadDates. Citations where either paper is undated, or where the citing
// paper predates the cited one, are skipped.
func (ix *Index) ReadCitations(r io.Reader) error {
	return scanRecords(r, func(_ int, fields []string) error {
		src, dst := padPaperID(fields[0]), padPaperID(fields[1])

		srcDate, srcOK := ix.dates[src]
		dstDate, dstOK := ix.dates[dst]
		if !srcOK || !dstOK || srcDate.Before(dstDate) {
			ix.skipped++
			return nil
		}

		ix.citations[src] = append(ix.citations[src], dst)
		return nil
	})
}

// Edges returns the citations made by the papers published in year. Papers
// are visited in the order they appear in the date file and the citations of
// each paper in the order they appear in the citation file.
func (ix *Index) Edges(year int) []Edge {
	var edges []Edge
	for _, paper := range ix.yearPapers[year] {
		for _, cited := range ix.citations[paper] {
			edges = append(edges, Edge{Src: paper, Dst: cited})
		}
	}
	return edges
}

// Papers returns the number of dated papers.
func (ix *Index) Papers() int { return len(ix.dates) }

// Skipped returns the number of citations dropped by ReadCitations.
func (ix *Index) Skipped() int { return ix.skipped }

func padPaperID(id string) string {
	if len(id) >= paperIDLength {
		return id
	}
	return strings.Repeat("0", paperIDLength-len(id)) + id
}

// scanRecords invokes fn for every non-comment, non-blank line of r. Each
// record must have exactly two fields.
func scanRecords(r io.Reader, fn func(lineNum int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return xerrors.Errorf("line %d: %q: %w", lineNum, line, ErrMalformedRecord)
		}
		if err := fn(lineNum, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}
