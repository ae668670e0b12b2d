package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseStructured extracts a JSON object from model output. Models often
// wrap JSON in code fences or preamble text, so the parser strips fences
// and scans forward to the first opening brace before decoding.
func ParseStructured(text string) (map[string]json.RawMessage, error) {
	text = strings.TrimSpace(text)

	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}

	if i := strings.IndexAny(text, "{["); i >= 0 {
		text = text[i:]
	}
	text = strings.TrimSpace(text)

	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parsing structured output: %w", err)
	}
	return out, nil
}

var hookPattern = regexp.MustCompile(`\[HOOK:\s*(.+?)\]`)

// ParseNarrative strips [HOOK: ...] markers from narrative output and
// returns them separately as story hooks.
func ParseNarrative(raw string) (text string, hooks []string) {
	raw = strings.TrimSpace(raw)
	for _, m := range hookPattern.FindAllStringSubmatch(raw, -1) {
		hooks = append(hooks, m[1])
	}
	return strings.TrimSpace(hookPattern.ReplaceAllString(raw, "")), hooks
}

var moodPattern = regexp.MustCompile(`^\[(\w+)\]\s*`)

// ParseDialogue splits a leading [mood] tag off an NPC reply. Falls back
// to a neutral mood when untagged.
func ParseDialogue(raw string) (text, mood string) {
	raw = strings.TrimSpace(raw)
	mood = "neutral"
	if m := moodPattern.FindStringSubmatch(raw); m != nil {
		mood = strings.ToLower(m[1])
		raw = raw[len(m[0]):]
	}
	return raw, mood
}
