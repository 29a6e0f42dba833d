package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/dwitlit/internal/jsonl"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// output writes v as JSON in --json mode, or calls text otherwise.
func (a *app) output(w io.Writer, v any, text func(w io.Writer)) error {
	if a.jsonMode {
		return printJSON(w, v)
	}
	text(w)
	return nil
}

// formatLink renders a link the way --link accepts it: label for a general
// link, label=id for a specific one.
func formatLink(l types.Link) string {
	if l.Target == nil {
		return l.Label
	}
	return l.Label + "=" + strconv.FormatInt(int64(*l.Target), 10)
}

// parseLink is the inverse of formatLink.
func parseLink(s string) (types.Link, error) {
	label, target, specific := strings.Cut(s, "=")
	if !specific {
		return types.GeneralLink(label), nil
	}
	id, err := parseID(target)
	if err != nil {
		return types.Link{}, err
	}
	return types.SpecificLink(label, id), nil
}

// parseID parses a record ID argument.
func parseID(s string) (types.RecordID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, usageError("invalid record id %q", s)
	}
	return types.RecordID(n), nil
}

// printRecord writes rec in text form.
func printRecord(w io.Writer, rec types.Record) {
	links := make([]string, len(rec.Links))
	for i, l := range rec.Links {
		links[i] = formatLink(l)
	}
	fmt.Fprintf(w, "id:        %d\n", rec.ID)
	fmt.Fprintf(w, "label:     %s\n", rec.Label)
	fmt.Fprintf(w, "confirmed: %t\n", rec.Confirmed)
	fmt.Fprintf(w, "payload:   %q\n", rec.Payload)
	fmt.Fprintf(w, "links:     %s\n", strings.Join(links, " "))
}

// recordJSON is the JSON form of a record in command output.
func recordJSON(rec types.Record) jsonl.Line {
	return jsonl.FromRecord(rec)
}
