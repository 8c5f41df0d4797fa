//go:build !tinygo

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/itohio/gotemp/pkg/store"
)

var _ Sink = (*JSON)(nil)

// New creates the sink for the named format.
func New(format string, w io.Writer, labels Labels) (Sink, error) {
	switch format {
	case FormatText, "":
		return NewText(w, labels), nil
	case FormatJSON:
		return NewJSON(w), nil
	default:
		return nil, fmt.Errorf("unknown report format: %q", format)
	}
}

// Message types in the JSON lines stream.
const (
	TypeLatest = "latest"
	TypeDump   = "dump"
)

// Message is one line of JSON output.
type Message struct {
	Type    string         `json:"type"`
	Index   *int           `json:"index,omitempty"`
	Record  *store.Record  `json:"record,omitempty"`
	Records []store.Record `json:"records,omitempty"`
}

// JSON writes one Message per line.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON lines sink writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Latest writes a "latest" message.
func (j *JSON) Latest(index int, rec store.Record) error {
	if err := j.enc.Encode(Message{Type: TypeLatest, Index: &index, Record: &rec}); err != nil {
		return fmt.Errorf("failed to encode latest record %d: %w", index, err)
	}
	return nil
}

// Dump writes a "dump" message holding every slot in index order.
func (j *JSON) Dump(records iter.Seq2[int, store.Record]) error {
	msg := Message{Type: TypeDump, Records: make([]store.Record, 0, store.DefaultCapacity)}
	for _, rec := range records {
		msg.Records = append(msg.Records, rec)
	}
	if err := j.enc.Encode(msg); err != nil {
		return fmt.Errorf("failed to encode telemetry dump: %w", err)
	}
	return nil
}
