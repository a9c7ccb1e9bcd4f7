package bilibili

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelope is the standard Bilibili API response wrapper
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	TTL     int             `json:"ttl"`
	Data    json.RawMessage `json:"data"`
}

// AccountInfo is the authenticated account's own profile
type AccountInfo struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
}

// Attribute is the server-reported relation state between two accounts
type Attribute int

const (
	AttrNone      Attribute = 0
	AttrWhispered Attribute = 1
	AttrFollowing Attribute = 2
	AttrMutual    Attribute = 6
	AttrBlocked   Attribute = 128
)

// IsFollowing reports whether the attribute means the account already
// follows the target (plain or mutual)
func (a Attribute) IsFollowing() bool {
	return a == AttrFollowing || a == AttrMutual
}

// RelationData is the response of the pairwise relation query
type RelationData struct {
	Mid       int64     `json:"mid"`
	Attribute Attribute `json:"attribute"`
	Mtime     int64     `json:"mtime"`
	Special   int       `json:"special"`
}

// FollowingsPage is one page of the followings list
type FollowingsPage struct {
	List  []Following `json:"list"`
	Total int         `json:"total"`
}

// Following is one record of the followings list. Mid and Uname are
// parsed out for the tools; the record round-trips verbatim through
// the raw field so extra profile fields survive export and re-import.
type Following struct {
	Mid   int64
	Uname string

	raw json.RawMessage
}

// UnmarshalJSON parses a following record, coercing mid from either a
// JSON number or a numeric string, and keeps the raw bytes for
// passthrough. A record without a usable mid is an error so callers
// can skip it.
func (f *Following) UnmarshalJSON(data []byte) error {
	var probe struct {
		Mid   json.RawMessage `json:"mid"`
		Uname string          `json:"uname"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("not a following record: %w", err)
	}
	if len(probe.Mid) == 0 {
		return fmt.Errorf("following record has no mid")
	}

	mid, err := coerceMid(probe.Mid)
	if err != nil {
		return err
	}

	f.Mid = mid
	f.Uname = probe.Uname
	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the original record bytes when present so export
// output preserves every field the API returned
func (f Following) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	return json.Marshal(struct {
		Mid   int64  `json:"mid"`
		Uname string `json:"uname,omitempty"`
	}{Mid: f.Mid, Uname: f.Uname})
}

// coerceMid accepts a mid encoded as a JSON number or a numeric string
func coerceMid(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("following record has no mid")
	}

	mid, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mid %q: %w", s, err)
	}
	if mid <= 0 {
		return 0, fmt.Errorf("invalid mid %d", mid)
	}
	return mid, nil
}
