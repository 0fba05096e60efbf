// Package skills reads and writes SKILL.md artifacts in a skills
// directory. The discovery pipeline uses the inventory only for
// deduplication; generated drafts are written back here on request.
package skills

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/skillscout/internal/draft"
)

// Artifact is one existing skill, described by its frontmatter.
type Artifact struct {
	Name        string
	Description string
	Path        string
}

// LoadInventory scans dir for <skill>/SKILL.md files and returns their
// frontmatter. A missing directory yields an empty inventory.
func LoadInventory(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read skills directory: %w", err)
	}

	var artifacts []Artifact
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), "SKILL.md")
		name, desc, err := readFrontmatter(path)
		if err != nil {
			continue
		}
		if name == "" {
			name = e.Name()
		}
		artifacts = append(artifacts, Artifact{Name: name, Description: desc, Path: path})
	}
	return artifacts, nil
}

// WriteDraft persists a rendered draft as <dir>/<name>/SKILL.md. An
// existing skill with the same name is never overwritten.
func WriteDraft(dir string, d draft.Draft) (string, error) {
	skillDir := filepath.Join(dir, d.Name)
	path := filepath.Join(skillDir, "SKILL.md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("skill %q already exists at %s", d.Name, path)
	}
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		return "", fmt.Errorf("create skill directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(d.Content), 0644); err != nil {
		return "", fmt.Errorf("write skill: %w", err)
	}
	return path, nil
}

// readFrontmatter extracts name and description from a SKILL.md
// frontmatter block delimited by "---" lines.
func readFrontmatter(path string) (name, description string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	inBlock := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "---" {
			if inBlock {
				break
			}
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}
		if v, ok := strings.CutPrefix(line, "name:"); ok {
			name = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "description:"); ok {
			description = strings.TrimSpace(v)
		}
	}
	return name, description, sc.Err()
}
