package validate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BarYAML validates bar.yml: a mapping whose bar_test mapping holds foo_test: zoo.
func BarYAML(path string) error {
	data, err := readNonEmpty(path)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fail(path, CheckValidYAML, "invalid YAML syntax", err)
	}

	if dup := duplicateKey(&doc); dup != nil {
		return fail(path, CheckValidYAML, fmt.Sprintf("duplicate key %q (line %d)", dup.Value, dup.Line), nil)
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return fail(path, CheckRootMapping, "bar.yml should contain a mapping at root level", nil)
	}

	barTest := lookup(root, "bar_test")
	if barTest == nil {
		return fail(path, CheckHasBarTest, "bar.yml should contain 'bar_test' key", nil)
	}
	if barTest.Kind != yaml.MappingNode {
		return fail(path, CheckBarMapping, fmt.Sprintf("'bar_test' should be a mapping (line %d)", barTest.Line), nil)
	}

	fooTest := lookup(barTest, "foo_test")
	if fooTest == nil {
		return fail(path, CheckHasFooTest, "'foo_test' key should exist under 'bar_test'", nil)
	}
	if fooTest.Kind != yaml.ScalarNode || fooTest.Tag != "!!str" || fooTest.Value != expectedFooTest {
		return fail(path, CheckFooValue,
			fmt.Sprintf("'foo_test' should have value %q, got %q (line %d)", expectedFooTest, fooTest.Value, fooTest.Line), nil)
	}
	return nil
}

// documentRoot unwraps the document node produced by yaml.Unmarshal into a Node.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return doc.Content[0]
	}
	return doc
}

// duplicateKey returns the first key node that repeats a key of the same
// mapping anywhere under n, or nil.
func duplicateKey(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.MappingNode {
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if seen[key.Value] {
				return key
			}
			seen[key.Value] = true
		}
	}
	for _, child := range n.Content {
		if dup := duplicateKey(child); dup != nil {
			return dup
		}
	}
	return nil
}

// lookup returns the value node for key in a mapping node. The last
// occurrence wins, as it does for the config loaders.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			found = mapping.Content[i+1]
		}
	}
	return found
}
