// Package catalog loads the external tool catalog and provides read-only
// lookup keyed by platform and operation. The catalog is loaded once before
// the pipeline's first step classification and never mutated at runtime,
// so it is safe for concurrent access across batch runs.
package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Tool is one entry in the external tool catalog.
type Tool struct {
	Platform    string          `json:"platform"`
	Operation   string          `json:"operation"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// Ref returns the platform:operation identifier for the tool.
func (t Tool) Ref() string {
	return t.Platform + ":" + t.Operation
}

// Catalog is an immutable index of tool definitions.
type Catalog struct {
	platforms map[string][]Tool
	index     map[string]Tool
}

// New builds a catalog from an explicit tool list. Tools missing a platform
// or operation are skipped.
func New(tools []Tool) *Catalog {
	c := &Catalog{
		platforms: make(map[string][]Tool),
		index:     make(map[string]Tool),
	}

	for _, t := range tools {
		if t.Platform == "" || t.Operation == "" {
			continue
		}
		c.platforms[t.Platform] = append(c.platforms[t.Platform], t)
		c.index[t.Ref()] = t
	}

	return c
}

// Load reads a catalog from a directory of per-platform JSONL dumps.
// Each <platform>.jsonl file contains one tool definition per line; the
// platform is taken from the filename. Unparseable lines are skipped.
func Load(dir string) (*Catalog, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob catalog dir: %w", err)
	}

	var tools []Tool
	for _, path := range paths {
		platform := strings.TrimSuffix(filepath.Base(path), ".jsonl")

		platformTools, err := loadPlatform(path, platform)
		if err != nil {
			return nil, fmt.Errorf("load platform %s: %w", platform, err)
		}
		tools = append(tools, platformTools...)
	}

	return New(tools), nil
}

func loadPlatform(path, platform string) ([]Tool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tools []Tool
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var t Tool
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			continue
		}

		t.Platform = platform
		tools = append(tools, t)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tools, nil
}

// Resolve looks up a tool by platform and operation.
func (c *Catalog) Resolve(platform, operation string) (Tool, bool) {
	t, ok := c.index[platform+":"+operation]
	return t, ok
}

// Tools returns the tool definitions for a platform.
func (c *Catalog) Tools(platform string) []Tool {
	return slices.Clone(c.platforms[platform])
}

// Platforms returns the sorted list of platforms present in the catalog.
func (c *Catalog) Platforms() []string {
	platforms := make([]string, 0, len(c.platforms))
	for p := range c.platforms {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

// Len returns the total number of tool definitions.
func (c *Catalog) Len() int {
	return len(c.index)
}
