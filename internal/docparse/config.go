package docparse

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
)

// envReferencePattern matches `${VAR}` and bare `$VAR` environment
// variable references inside a configuration value.
var envReferencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// FormatForExtension maps a file extension to a config_format tag, or ""
// if the extension is not a recognized configuration format.
func FormatForExtension(ext string) string {
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".properties":
		return "properties"
	default:
		return ""
	}
}

// SplitConfig parses content in its native format and emits one
// DocumentNode per top-level key.
func SplitConfig(filePath string, content []byte) ([]model.DocumentNode, error) {
	format := FormatForExtension(strings.ToLower(filepath.Ext(filePath)))
	if format == "" {
		return nil, errs.New(errs.UnsupportedLanguage, fmt.Sprintf("unsupported config format for %s", filePath))
	}

	tree, err := parseToTree(format, content)
	if err != nil {
		return nil, errs.Wrap(errs.Parser, "failed to parse config file "+filePath, err)
	}

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]model.DocumentNode, 0, len(keys))
	for _, key := range keys {
		value := tree[key]
		var section strings.Builder
		section.WriteString(key)
		section.WriteString(":\n")
		writeTreeText(&section, value, 1)

		nodes = append(nodes, model.DocumentNode{
			FilePath:      filePath,
			SectionTitle:  key,
			NodeType:      model.NodeConfig,
			Content:       strings.TrimRight(section.String(), "\n"),
			ConfigKeys:    flattenKeys("", value),
			EnvReferences: extractEnvReferences(value),
			SectionDepth:  treeDepth(value),
			ConfigFormat:  format,
		})
	}
	return nodes, nil
}

// parseToTree normalizes any supported format into a generic
// map[string]any tree, synthesizing nesting for properties files from
// their dotted keys.
func parseToTree(format string, content []byte) (map[string]any, error) {
	switch format {
	case "yaml":
		var tree map[string]any
		if err := yaml.Unmarshal(content, &tree); err != nil {
			return nil, err
		}
		return tree, nil
	case "json":
		var tree map[string]any
		if err := json.Unmarshal(content, &tree); err != nil {
			return nil, err
		}
		return tree, nil
	case "toml":
		var tree map[string]any
		if err := toml.Unmarshal(content, &tree); err != nil {
			return nil, err
		}
		return tree, nil
	case "properties":
		return parseProperties(content), nil
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
}

// parseProperties is a hand-rolled `.properties` line scanner: `key=value`
// or `key:value` pairs, `#`/`!` comments. No library in the example pack
// covers Java's .properties format, so this one piece is stdlib-only by
// necessity rather than choice.
func parseProperties(content []byte) map[string]any {
	flat := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		flat[key] = value
	}

	tree := make(map[string]any)
	for key, value := range flat {
		segments := strings.Split(key, ".")
		insertPath(tree, segments, value)
	}
	return tree
}

func insertPath(tree map[string]any, segments []string, value string) {
	if len(segments) == 1 {
		tree[segments[0]] = value
		return
	}
	head, rest := segments[0], segments[1:]
	child, ok := tree[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		tree[head] = child
	}
	insertPath(child, rest, value)
}

// flattenKeys collects "a.b.c" dotted paths for every leaf nested under
// value.
func flattenKeys(prefix string, value any) []string {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			keys = append(keys, flattenKeys(path, nested)...)
		} else {
			keys = append(keys, path)
		}
	}
	sort.Strings(keys)
	return keys
}

// treeDepth reports the maximum nesting depth under value (0 for a leaf).
func treeDepth(value any) int {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 {
		return 0
	}
	max := 0
	for _, v := range m {
		if d := treeDepth(v) + 1; d > max {
			max = d
		}
	}
	return max
}

// extractEnvReferences scans every string leaf under value for
// `${VAR}`/`$VAR` references.
func extractEnvReferences(value any) []string {
	seen := make(map[string]bool)
	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for _, child := range t {
				walk(child)
			}
		case string:
			for _, m := range envReferencePattern.FindAllStringSubmatch(t, -1) {
				name := m[1]
				if name == "" {
					name = m[2]
				}
				if name != "" && !seen[name] {
					seen[name] = true
					refs = append(refs, name)
				}
			}
		}
	}
	walk(value)
	sort.Strings(refs)
	return refs
}

// writeTreeText renders a generic tree as an indented key: value listing,
// used to build a config DocumentNode's Content.
func writeTreeText(b *strings.Builder, value any, depth int) {
	m, ok := value.(map[string]any)
	if !ok {
		b.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(b, "%v\n", value)
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(k)
		child := m[k]
		if _, isMap := child.(map[string]any); isMap {
			b.WriteString(":\n")
			writeTreeText(b, child, depth+1)
		} else {
			fmt.Fprintf(b, ": %v\n", child)
		}
	}
}
