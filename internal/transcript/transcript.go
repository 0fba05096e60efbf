// Package transcript reads Claude Code JSONL session transcripts as a lazy
// stream of entries. Each line is parsed independently; malformed lines are
// skipped so corruption in one entry never aborts the stream.
package transcript

import (
	"encoding/json"
	"time"
)

// EntryKind discriminates the entry union.
type EntryKind string

const (
	KindUser      EntryKind = "user"
	KindAssistant EntryKind = "assistant"
	KindToolUse   EntryKind = "tool_use"
)

// Entry is one parsed transcript event. Tool invocations carry the tool
// name plus the arguments the discovery pipeline cares about; the raw
// input is kept for callers that need other fields.
type Entry struct {
	Kind      EntryKind
	Timestamp time.Time
	Text      string          // user/assistant text content
	Tool      string          // tool_use only
	FilePath  string          // tool_use: file_path argument, if any
	Command   string          // tool_use: command argument, if any
	Input     json.RawMessage // tool_use: full argument object
}

// rawLine mirrors one transcript line. The schema is open; unknown fields
// are ignored rather than rejected.
type rawLine struct {
	Type        string          `json:"type"`
	Timestamp   string          `json:"timestamp,omitempty"`
	IsSidechain bool            `json:"isSidechain,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentItem struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type toolInput struct {
	FilePath     string `json:"file_path,omitempty"`
	Path         string `json:"path,omitempty"`
	NotebookPath string `json:"notebook_path,omitempty"`
	Command      string `json:"command,omitempty"`
}

// parseLine converts one JSONL line into zero or more entries. An
// assistant line can yield the assistant message plus one tool_use entry
// per tool invocation in its content. Sidechain lines (delegated
// sub-conversations) yield nothing.
func parseLine(line []byte) []Entry {
	var raw rawLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil
	}
	if raw.IsSidechain {
		return nil
	}

	ts := parseTimestamp(raw.Timestamp)

	switch raw.Type {
	case "user", "human":
		return []Entry{{Kind: KindUser, Timestamp: ts, Text: messageText(raw.Message)}}
	case "assistant":
		return assistantEntries(raw.Message, ts)
	default:
		return nil
	}
}

func assistantEntries(msg json.RawMessage, ts time.Time) []Entry {
	entries := []Entry{{Kind: KindAssistant, Timestamp: ts}}
	if len(msg) == 0 {
		return entries
	}

	var m rawMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return entries
	}

	var items []contentItem
	if err := json.Unmarshal(m.Content, &items); err != nil {
		// Plain string content carries no tool invocations.
		var text string
		if json.Unmarshal(m.Content, &text) == nil {
			entries[0].Text = text
		}
		return entries
	}

	for _, item := range items {
		switch item.Type {
		case "text":
			if entries[0].Text == "" {
				entries[0].Text = item.Text
			}
		case "tool_use":
			if item.Name == "" {
				continue
			}
			e := Entry{
				Kind:      KindToolUse,
				Timestamp: ts,
				Tool:      item.Name,
				Input:     item.Input,
			}
			if len(item.Input) > 0 {
				var in toolInput
				if json.Unmarshal(item.Input, &in) == nil {
					e.Command = in.Command
					e.FilePath = firstNonEmpty(in.FilePath, in.Path, in.NotebookPath)
				}
			}
			entries = append(entries, e)
		}
	}
	return entries
}

func messageText(msg json.RawMessage) string {
	if len(msg) == 0 {
		return ""
	}
	var m rawMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return ""
	}
	var text string
	if json.Unmarshal(m.Content, &text) == nil {
		return text
	}
	var items []contentItem
	if json.Unmarshal(m.Content, &items) == nil {
		for _, item := range items {
			if item.Type == "text" && item.Text != "" {
				return item.Text
			}
		}
	}
	return ""
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
