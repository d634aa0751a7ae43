package afdian

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Code is an application status code. The API sends it either as a JSON
// number or as a string, so both decode to the same textual form.
type Code string

// UnmarshalJSON implements json.Unmarshaler
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*c = Code(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*c = Code(n.String())
	}
	return nil
}

// envelope is the outer shape shared by every API response
type envelope struct {
	Code Code            `json:"code"`
	EC   Code            `json:"ec"`
	EM   string          `json:"em"`
	Data json.RawMessage `json:"data"`
}

// LoginData is the payload of a successful login
type LoginData struct {
	AuthToken string `json:"auth_token"`
}

// CatalogData is the payload of the album catalog endpoint
type CatalogData struct {
	List []CatalogEntry `json:"list"`
}

// CatalogEntry is one post in an album catalog
type CatalogEntry struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}

// PostDetail is the payload of the post detail endpoint
type PostDetail struct {
	Post *struct {
		Content string `json:"content"`
	} `json:"post"`
}

// PostListData is the payload of a creator's post list
type PostListData struct {
	List []PostSummary `json:"list"`
}

// PostSummary is one entry of a creator's post list
type PostSummary struct {
	PostID string     `json:"post_id"`
	Title  string     `json:"title"`
	Albums []AlbumRef `json:"albums"`
}

// AlbumRef identifies an album a post belongs to
type AlbumRef struct {
	AlbumID string `json:"album_id"`
	Title   string `json:"title"`
}

// isEmptyData reports whether a raw data field carries nothing: absent,
// null, an empty object or array, an empty string, false or zero.
func isEmptyData(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
