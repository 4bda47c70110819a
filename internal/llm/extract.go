package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON means a reply held no parseable JSON object.
var ErrNoJSON = errors.New("no json object in reply")

// ExtractJSON returns the first balanced {...} region of text that parses
// as a JSON object. Surrounding commentary, code fences and reasoning
// blocks are ignored.
func ExtractJSON(text string) ([]byte, error) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end := matchBrace(text, start)
		if end < 0 {
			continue
		}
		candidate := []byte(text[start : end+1])
		var obj map[string]json.RawMessage
		if json.Unmarshal(candidate, &obj) == nil {
			return candidate, nil
		}
	}
	return nil, ErrNoJSON
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// PlainText drops reasoning blocks some models emit before their answer
// and trims the rest.
func PlainText(reply string) string {
	for {
		open := strings.Index(reply, "<think>")
		if open < 0 {
			break
		}
		end := strings.Index(reply[open:], "</think>")
		if end < 0 {
			reply = reply[:open]
			break
		}
		reply = reply[:open] + reply[open+end+len("</think>"):]
	}
	return strings.TrimSpace(reply)
}
