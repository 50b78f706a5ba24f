/*
Package server implements msgpack IPC for pinyin classification and suggestions.

The server reads msgpack values from stdin and writes one msgpack response per
request to stdout. Logs go to stderr so they never mix with the protocol.

# IPC

Every message carries an "id". Clients may leave it empty, in which case the
server assigns one and echoes it back.

Classify requests look like this:

	{"id": "req_001", "t": "nihao", "s": "searchbox", "x": true, "n": 6}

"t" is the raw text, "s" names the input stream the text came from, "x" asks
for character candidates and "n" caps how many.

The server answers with the verdict, and for pinyin with its coverage,
syllables and candidates:

	{"id": "req_001", "type": "pinyin", "cov": {"total": 5, "matched": 5, "syllables": 2},
	 "syl": [{"s": "ni", "l": 2}, {"s": "hao", "l": 3}], "cand": [{"w": "你好", "r": 1}], "t": 301245}

Invalid text gets a user-facing "msg". Chinese and mixed text carry only the type.

# Suggestions

Classification is answered right away. When candidates are requested for pinyin
the answer waits for the debounce delay, and if a newer request arrived on the
same stream meanwhile, it goes out with "stale": true and no candidates. A
lookup already in flight is never aborted, but its result is dropped when
superseded. Backend trouble shows up as an empty candidate list, never as an error.

# Control

	{"id": "cfg_001", "action": "get"}
	{"id": "cfg_002", "action": "reload"}
	{"id": "cfg_003", "action": "health"}

A well-formed msgpack value that is not a request gets an ErrorResponse and
the loop keeps going. Bytes that are not msgpack at all break the framing:
the server answers with an ErrorResponse and ends the session.
*/
package server

import (
	"github.com/bastiangx/pinserve/pkg/detect"
	"github.com/bastiangx/pinserve/pkg/syllable"
)

// ClassifyRequest asks for the classification of one piece of text.
type ClassifyRequest struct {
	ID      string `msgpack:"id"`
	Text    string `msgpack:"t"`
	Stream  string `msgpack:"s,omitempty"`
	Limit   int    `msgpack:"n,omitempty"`
	Suggest bool   `msgpack:"x,omitempty"`
}

// Candidate is one backend suggestion, best first.
type Candidate struct {
	Text string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// ClassifyResponse carries the verdict and, for pinyin, how it was reached.
type ClassifyResponse struct {
	ID         string             `msgpack:"id"`
	Type       detect.InputType   `msgpack:"type"`
	Message    string             `msgpack:"msg,omitempty"`
	Coverage   *syllable.Coverage `msgpack:"cov,omitempty"`
	Syllables  []syllable.Match   `msgpack:"syl,omitempty"`
	Candidates []Candidate        `msgpack:"cand,omitempty"`
	Stale      bool               `msgpack:"stale,omitempty"`
	TimeTaken  int64              `msgpack:"t"`
}

// CONFIG MESSAGES - runtime config is read-only over IPC, edit the TOML file to change it

// ConfigRequest reads or reloads the active config.
type ConfigRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "get", "reload", "health"
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID           string `msgpack:"id"`
	Status       string `msgpack:"status"`
	Error        string `msgpack:"error,omitempty"`
	Path         string `msgpack:"path,omitempty"`
	MaxInput     int    `msgpack:"max_input,omitempty"`
	DefaultLimit int    `msgpack:"default_limit,omitempty"`
	MaxLimit     int    `msgpack:"max_limit,omitempty"`
	DebounceMs   int    `msgpack:"debounce_ms,omitempty"`
	CacheTTLs    int    `msgpack:"cache_ttl_s,omitempty"`
}

// ErrorResponse holds basic error information for rejected requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// envelope is decoded first to tell classify and config messages apart.
type envelope struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action"`
	Text    string `msgpack:"t"`
	Stream  string `msgpack:"s"`
	Limit   int    `msgpack:"n"`
	Suggest bool   `msgpack:"x"`
}

func (e envelope) classify() ClassifyRequest {
	return ClassifyRequest{ID: e.ID, Text: e.Text, Stream: e.Stream, Limit: e.Limit, Suggest: e.Suggest}
}
