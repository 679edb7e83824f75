// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// The snapshot JSON varies slightly by platform quirks, so the record
// types keep required and well-known fields as struct members and carry
// every other field through an Extra map. Marshaling assembles a key map
// and relies on encoding/json's sorted map-key output, so the encoding
// of a given record is deterministic regardless of how it was built.

// UnmarshalJSON decodes a submission record, routing unknown top-level
// fields into Extra.
func (s *SubmissionRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(val, &s.ID)
		case "number":
			err = json.Unmarshal(val, &s.Number)
		case "cdate":
			err = json.Unmarshal(val, &s.CDate)
		case "mdate":
			err = json.Unmarshal(val, &s.MDate)
		case "content":
			err = json.Unmarshal(val, &s.Content)
		case "details":
			err = json.Unmarshal(val, &s.Details)
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]json.RawMessage)
			}
			s.Extra[key] = val
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON encodes a submission record, re-emitting preserved Extra
// fields alongside the known ones. Zero-valued optional fields are
// omitted.
func (s *SubmissionRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+6)
	for k, v := range s.Extra {
		out[k] = v
	}
	put(out, "id", s.ID, s.ID != "")
	put(out, "number", s.Number, s.Number != 0)
	put(out, "cdate", s.CDate, s.CDate != 0)
	put(out, "mdate", s.MDate, s.MDate != 0)
	put(out, "content", s.Content, len(s.Content) > 0)
	put(out, "details", &s.Details, len(s.Details.DirectReplies) > 0 || len(s.Details.Extra) > 0)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the reply container, routing sibling fields of
// directReplies into Extra.
func (d *Details) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if key == "directReplies" {
			if err := json.Unmarshal(val, &d.DirectReplies); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]json.RawMessage)
		}
		d.Extra[key] = val
	}
	return nil
}

// MarshalJSON encodes the reply container.
func (d *Details) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Extra)+1)
	for k, v := range d.Extra {
		out[k] = v
	}
	// directReplies is always present, even when empty, so a merged
	// record reads the same as a crawled one.
	replies := d.DirectReplies
	if replies == nil {
		replies = []*ReplyRecord{}
	}
	put(out, "directReplies", replies, true)
	return json.Marshal(out)
}

// UnmarshalJSON decodes a reply record, routing unknown fields into Extra.
func (r *ReplyRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(val, &r.ID)
		case "replyto":
			err = json.Unmarshal(val, &r.ReplyTo)
		case "number":
			err = json.Unmarshal(val, &r.Number)
		case "version":
			err = json.Unmarshal(val, &r.Version)
		case "cdate":
			err = json.Unmarshal(val, &r.CDate)
		case "mdate":
			err = json.Unmarshal(val, &r.MDate)
		case "invitations":
			err = json.Unmarshal(val, &r.Invitations)
		case "signatures":
			err = json.Unmarshal(val, &r.Signatures)
		case "content":
			err = json.Unmarshal(val, &r.Content)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[key] = val
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON encodes a reply record.
func (r *ReplyRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+9)
	for k, v := range r.Extra {
		out[k] = v
	}
	put(out, "id", r.ID, r.ID != "")
	put(out, "replyto", r.ReplyTo, r.ReplyTo != "")
	put(out, "number", r.Number, r.Number != 0)
	put(out, "version", r.Version, r.Version != 0)
	put(out, "cdate", r.CDate, r.CDate != 0)
	put(out, "mdate", r.MDate, r.MDate != 0)
	put(out, "invitations", r.Invitations, len(r.Invitations) > 0)
	put(out, "signatures", r.Signatures, len(r.Signatures) > 0)
	put(out, "content", r.Content, len(r.Content) > 0)
	return json.Marshal(out)
}

// put marshals v under key when present is true. Marshal errors cannot
// occur for the field types used here, so they are swallowed rather
// than threaded through every caller.
func put(out map[string]json.RawMessage, key string, v any, present bool) {
	if !present {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	out[key] = data
}
