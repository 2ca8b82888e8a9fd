package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the deterministic serialization of a log used
// for content hashing. It differs from MarshalLog in three ways:
//
//  1. Object keys are emitted in sorted (bytewise) order.
//  2. HTML characters (< > &) are not escaped.
//  3. String values are NFC normalized, so visually identical logs that
//     differ only in Unicode composition hash identically.
//
// The wire format (MarshalLog) remains the interchange encoding; canonical
// form exists only so LogHash is stable across re-encodings.
func MarshalCanonical(log []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range log {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalEntry(&buf, e); err != nil {
			return nil, fmt.Errorf("canonical log[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// writeCanonicalEntry emits one entry with its keys in sorted order.
// The key sets are fixed per variant, so the sorted order is spelled out
// literally rather than computed.
func writeCanonicalEntry(buf *bytes.Buffer, e Entry) error {
	switch v := e.(type) {
	case Segment:
		// interval_ms < latency_ms < string < type
		buf.WriteByte('{')
		writeCanonicalKey(buf, "interval_ms")
		fmt.Fprintf(buf, "%d,", v.IntervalMS)
		writeCanonicalKey(buf, "latency_ms")
		fmt.Fprintf(buf, "%d,", v.LatencyMS)
		writeCanonicalKey(buf, "string")
		if err := writeCanonicalString(buf, v.String); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeCanonicalKey(buf, "type")
		if err := writeCanonicalString(buf, TypeCompressed); err != nil {
			return err
		}
		buf.WriteByte('}')
	case SingleKey:
		return writeCanonicalKeyed(buf, TypeRawKey, v.Key, v.LatencyMS)
	case SingleSpecial:
		return writeCanonicalKeyed(buf, TypeRawSpecial, string(v.Key), v.LatencyMS)
	case PasteEntry:
		// content < latency_ms < type
		buf.WriteByte('{')
		writeCanonicalKey(buf, "content")
		if err := writeCanonicalString(buf, v.Content); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeCanonicalKey(buf, "latency_ms")
		fmt.Fprintf(buf, "%d,", v.LatencyMS)
		writeCanonicalKey(buf, "type")
		if err := writeCanonicalString(buf, TypeRawPaste); err != nil {
			return err
		}
		buf.WriteByte('}')
	case SelectionEntry:
		// end < latency_ms < start < type
		buf.WriteByte('{')
		writeCanonicalKey(buf, "end")
		fmt.Fprintf(buf, "%d,", v.End)
		writeCanonicalKey(buf, "latency_ms")
		fmt.Fprintf(buf, "%d,", v.LatencyMS)
		writeCanonicalKey(buf, "start")
		fmt.Fprintf(buf, "%d,", v.Start)
		writeCanonicalKey(buf, "type")
		if err := writeCanonicalString(buf, TypeSelectionChange); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported entry type %T", e)
	}
	return nil
}

// writeCanonicalKeyed emits the {key, latency_ms, type} shape shared by
// RAW_KEY and RAW_SPECIAL. Sorted order: key < latency_ms < type.
func writeCanonicalKeyed(buf *bytes.Buffer, tag, key string, latency int64) error {
	buf.WriteByte('{')
	writeCanonicalKey(buf, "key")
	if err := writeCanonicalString(buf, key); err != nil {
		return err
	}
	buf.WriteByte(',')
	writeCanonicalKey(buf, "latency_ms")
	fmt.Fprintf(buf, "%d,", latency)
	writeCanonicalKey(buf, "type")
	if err := writeCanonicalString(buf, tag); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalKey writes a bare ASCII key plus the colon separator.
// Keys in this format are fixed ASCII identifiers; no normalization needed.
func writeCanonicalKey(buf *bytes.Buffer, key string) {
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteByte('"')
	buf.WriteByte(':')
}

// writeCanonicalString writes an NFC-normalized JSON string without HTML
// escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return fmt.Errorf("canonical string: %w", err)
	}

	// json.Encoder appends a trailing newline.
	out := bytes.TrimRight(tmp.Bytes(), "\n")
	buf.Write(out)
	return nil
}
