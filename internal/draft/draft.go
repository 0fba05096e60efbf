// Package draft renders ranked pattern candidates into skill artifact
// text. Rendering is pure; callers persist the result.
package draft

import (
	"fmt"
	"strings"

	"github.com/emiliopalmerini/skillscout/internal/patterns"
)

// Draft is one rendered artifact.
type Draft struct {
	Name    string
	Content string
}

// maxNameLen bounds suggested artifact names.
const maxNameLen = 48

var toolPhrases = map[string]string{
	"Read":         "reading files",
	"Write":        "writing files",
	"Edit":         "editing files",
	"MultiEdit":    "applying multi-part edits",
	"NotebookEdit": "editing notebooks",
	"Bash":         "running shell commands",
	"Grep":         "searching code",
	"Glob":         "locating files",
	"WebFetch":     "fetching web content",
	"WebSearch":    "searching the web",
	"Task":         "delegating to a subagent",
	"TodoWrite":    "tracking a task list",
}

var categoryPhrases = map[patterns.Category]string{
	patterns.CategoryPackageManager: "managing packages",
	patterns.CategoryVersionControl: "working with version control",
	patterns.CategoryTestRunner:     "running tests",
	patterns.CategoryBuild:          "building the project",
	patterns.CategoryFileOps:        "manipulating files",
	patterns.CategorySearch:         "searching the tree",
	patterns.CategoryOther:          "running a shell command",
}

// Describe translates a pattern key into a natural-language description.
// The same text feeds embedding-based clustering and the rendered draft.
func Describe(key string) string {
	prefix, rest := patterns.SplitKey(key)
	switch prefix {
	case patterns.ToolSequencePrefix:
		tools := strings.Split(rest, ",")
		phrases := make([]string, len(tools))
		for i, t := range tools {
			phrases[i] = toolPhrase(t)
		}
		return "A workflow of " + joinPhrases(phrases)
	case patterns.BashPrefix:
		category, sig, _ := strings.Cut(rest, ":")
		phrase := categoryPhrases[patterns.Category(category)]
		if phrase == "" {
			phrase = categoryPhrases[patterns.CategoryOther]
		}
		return fmt.Sprintf("A recurring shell invocation for %s: `%s`", phrase, sig)
	default:
		return "A recurring workflow pattern: " + key
	}
}

// SuggestName derives a normalized artifact name from a pattern key:
// lowercase, hyphen-separated, [a-z0-9-] only, length-bounded.
func SuggestName(key string) string {
	prefix, rest := patterns.SplitKey(key)
	var raw string
	switch prefix {
	case patterns.ToolSequencePrefix:
		raw = strings.ReplaceAll(rest, ",", "-then-")
	case patterns.BashPrefix:
		category, sig, _ := strings.Cut(rest, ":")
		raw = category + "-" + sig
	default:
		raw = rest
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if len(name) > maxNameLen {
		name = strings.Trim(name[:maxNameLen], "-")
	}
	if name == "" {
		name = "discovered-pattern"
	}
	return name
}

// Input is the evidence a draft is rendered from.
type Input struct {
	Key          string
	Name         string // pre-computed suggested name
	Occurrences  int
	ProjectCount int
	SessionCount int
	Files        []string
	ClusterKeys  []string // sibling patterns collapsed into this candidate
}

// Render produces the artifact body for one candidate: SKILL.md-style
// frontmatter plus a description of the detected pattern and its
// evidence.
func Render(in Input) Draft {
	name := in.Name
	if name == "" {
		name = SuggestName(in.Key)
	}
	desc := Describe(in.Key)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "description: %s\n", frontmatterSafe(desc))
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", name)
	b.WriteString(desc + ".\n\n")

	b.WriteString("## Evidence\n\n")
	fmt.Fprintf(&b, "- Observed %d times across %d sessions in %d projects.\n",
		in.Occurrences, in.SessionCount, in.ProjectCount)
	fmt.Fprintf(&b, "- Pattern key: `%s`\n", in.Key)
	if len(in.ClusterKeys) > 0 {
		b.WriteString("- Related patterns merged into this candidate:\n")
		for _, k := range in.ClusterKeys {
			fmt.Fprintf(&b, "  - `%s`\n", k)
		}
	}
	if len(in.Files) > 0 {
		b.WriteString("\n## Frequently co-occurring files\n\n")
		for i, f := range in.Files {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
	}

	b.WriteString("\n## Instructions\n\n")
	b.WriteString("Review the detected workflow above and replace this section\n")
	b.WriteString("with the concrete steps to automate it.\n")

	return Draft{Name: name, Content: b.String()}
}

func toolPhrase(tool string) string {
	if p, ok := toolPhrases[tool]; ok {
		return p
	}
	return "using " + tool
}

func joinPhrases(phrases []string) string {
	switch len(phrases) {
	case 0:
		return ""
	case 1:
		return phrases[0]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + " followed by " + phrases[len(phrases)-1]
	}
}

// frontmatterSafe keeps the description on one YAML line.
func frontmatterSafe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "`", "")
}
