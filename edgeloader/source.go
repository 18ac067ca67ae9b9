package edgeloader

import (
	"bufio"
	"context"
	"io"
	"strings"

	"Citation_Rank/pipeline"
)

const maxLineLength = 1 << 20

var _ pipeline.Payload = (*linePayload)(nil)

type linePayload struct {
	Line string
}

// Clone implements pipeline.Payload.
func (p *linePayload) Clone() pipeline.Payload {
	return &linePayload{Line: p.Line}
}

// MarkAsProcessed implements pipeline.Payload.
func (p *linePayload) MarkAsProcessed() {}

// lineSource emits one payload per line of the underlying reader.
type lineSource struct {
	scanner *bufio.Scanner
}

func newLineSource(r io.Reader) *lineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	return &lineSource{scanner: scanner}
}

func (s *lineSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return s.scanner.Scan()
}

func (s *lineSource) Payload() pipeline.Payload {
	return &linePayload{Line: s.scanner.Text()}
}

func (s *lineSource) Error() error {
	return s.scanner.Err()
}

// lineNormalizer strips the carriage returns left behind by CRLF line endings.
type lineNormalizer struct{}

func newLineNormalizer() *lineNormalizer {
	return &lineNormalizer{}
}

func (n *lineNormalizer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*linePayload)
	payload.Line = strings.TrimSuffix(payload.Line, "\r")
	return payload, nil
}

// lineSink collects the lines that reach the end of the pipeline.
type lineSink struct {
	lines []string
}

func (s *lineSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.lines = append(s.lines, p.(*linePayload).Line)
	return nil
}
