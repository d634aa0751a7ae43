// Package cookie keeps the session cookies exchanged with the afdian API.
//
// Unlike net/http/cookiejar, the Jar does not scope cookies by domain, path
// or expiry: every cookie it holds is sent on every request as a single
// "k1=v1;k2=v2" header value.
package cookie

import (
	"regexp"
	"strings"
)

// expiresAttr matches an "expires=" attribute including the comma that HTTP
// dates carry after the weekday, so the remaining text can be split on ','.
var expiresAttr = regexp.MustCompile(`[eE]xpires=[^;,]*(,[^;,]*)?;?`)

// Jar is an insertion-ordered name to value mapping.
type Jar struct {
	keys   []string
	values map[string]string
}

// NewJar creates a jar, optionally seeded from a cookie string
func NewJar(cookieString string) *Jar {
	j := &Jar{values: make(map[string]string)}
	if cookieString != "" {
		j.LoadString(cookieString)
	}
	return j
}

// Set stores value under key. An existing key keeps its position.
func (j *Jar) Set(key, value string) {
	if _, ok := j.values[key]; !ok {
		j.keys = append(j.keys, key)
	}
	j.values[key] = value
}

// Get returns the value stored under key
func (j *Jar) Get(key string) (string, bool) {
	v, ok := j.values[key]
	return v, ok
}

// Len returns the number of cookies in the jar
func (j *Jar) Len() int {
	return len(j.keys)
}

// Map returns a copy of the jar contents
func (j *Jar) Map() map[string]string {
	out := make(map[string]string, len(j.values))
	for k, v := range j.values {
		out[k] = v
	}
	return out
}

// LoadString merges a "k1=v1; k2=v2" string into the jar. Fragments without
// '=' are skipped.
func (j *Jar) LoadString(s string) {
	for _, fragment := range strings.Split(s, ";") {
		j.loadPair(fragment)
	}
}

// LoadSetCookie merges the value of a Set-Cookie header into the jar. Several
// cookies may be joined by ','; only the name=value part of each is kept.
func (j *Jar) LoadSetCookie(header string) {
	header = expiresAttr.ReplaceAllString(header, "")
	for _, fragment := range strings.Split(header, ",") {
		pair, _, _ := strings.Cut(fragment, ";")
		j.loadPair(pair)
	}
}

// String serialises the jar for the Cookie request header.
func (j *Jar) String() string {
	pairs := make([]string, 0, len(j.keys))
	for _, k := range j.keys {
		pairs = append(pairs, k+"="+j.values[k])
	}
	return strings.Join(pairs, ";")
}

func (j *Jar) loadPair(fragment string) {
	key, value, ok := strings.Cut(fragment, "=")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	j.Set(key, strings.TrimSpace(value))
}
