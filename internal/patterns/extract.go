// Package patterns turns parsed session entries into candidate pattern
// keys, aggregates their occurrences across a scan run, and scores the
// aggregated results.
package patterns

import (
	"strings"
	"time"

	"github.com/emiliopalmerini/skillscout/internal/transcript"
)

// Pattern key namespaces.
const (
	ToolSequencePrefix = "tool-sequence:"
	BashPrefix         = "bash:"
)

// ngramWindows are the sliding-window sizes emitted by the tool-sequence
// extractor.
var ngramWindows = []int{2, 3}

// SessionActivity is the per-session material both extractors consume,
// collected in one pass over the entry stream.
type SessionActivity struct {
	ToolSequence []string
	Commands     []string
	Files        []string
	FirstSeen    time.Time
	LastSeen     time.Time
}

// CollectActivity drains a session's entry stream into its activity
// summary. Only one session is materialized at a time; the scanner
// processes sessions sequentially.
func CollectActivity(stream *transcript.Stream) SessionActivity {
	var act SessionActivity
	seenFiles := make(map[string]bool)

	for {
		e, ok := stream.Next()
		if !ok {
			break
		}
		if !e.Timestamp.IsZero() {
			if act.FirstSeen.IsZero() {
				act.FirstSeen = e.Timestamp
			}
			act.LastSeen = e.Timestamp
		}
		if e.Kind != transcript.KindToolUse {
			continue
		}
		act.ToolSequence = append(act.ToolSequence, e.Tool)
		if e.Command != "" {
			act.Commands = append(act.Commands, e.Command)
		}
		if e.FilePath != "" && !seenFiles[e.FilePath] {
			seenFiles[e.FilePath] = true
			act.Files = append(act.Files, e.FilePath)
		}
	}
	return act
}

// Keys runs both extractors over the activity and returns every candidate
// pattern key, duplicates included (repeats within a session count as
// separate occurrences).
func (a SessionActivity) Keys() []string {
	keys := ToolSequenceKeys(a.ToolSequence)
	for _, cmd := range a.Commands {
		if key := BashKey(cmd); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// ToolSequenceKeys emits sliding-window n-grams over the ordered tool
// names invoked in a session, as keys of the form
// "tool-sequence:Read,Edit".
func ToolSequenceKeys(tools []string) []string {
	var keys []string
	for _, w := range ngramWindows {
		for i := 0; i+w <= len(tools); i++ {
			keys = append(keys, ToolSequencePrefix+strings.Join(tools[i:i+w], ","))
		}
	}
	return keys
}

// SplitKey separates a pattern key into its namespace and remainder.
// Returns ("", key) for keys in no known namespace.
func SplitKey(key string) (prefix, rest string) {
	for _, p := range []string{ToolSequencePrefix, BashPrefix} {
		if strings.HasPrefix(key, p) {
			return p, strings.TrimPrefix(key, p)
		}
	}
	return "", key
}
