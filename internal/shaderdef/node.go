// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shaderdef

import "go.yaml.in/yaml/v3"

var utf8BOM = []byte("\xef\xbb\xbf")

// unescapeSolidus rewrites the JSON escape \/ to a plain slash inside string
// tokens. YAML double-quoted scalars have no such escape. content must already
// be valid JSON.
func unescapeSolidus(content []byte) []byte {
	out := make([]byte, 0, len(content))
	inString := false
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case !inString:
			inString = c == '"'
		case c == '"':
			inString = false
		case c == '\\' && i+1 < len(content):
			i++
			if content[i] != '/' {
				out = append(out, c)
			}
			c = content[i]
		}
		out = append(out, c)
	}
	return out
}

// lookup returns the value of key in mapping node m, or nil. With repeated
// keys the last one wins.
func lookup(m *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			found = m.Content[i+1]
		}
	}
	return deref(found)
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// floats converts a list of numbers. It reports false when n is not a list or
// any element is not a number.
func floats(n *yaml.Node) ([]float32, bool) {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil, false
	}
	values := make([]float32, 0, len(n.Content))
	for _, el := range n.Content {
		el = deref(el)
		if el.Kind != yaml.ScalarNode {
			return nil, false
		}
		if tag := el.ShortTag(); tag != "!!int" && tag != "!!float" {
			return nil, false
		}
		var f float32
		if err := el.Decode(&f); err != nil {
			return nil, false
		}
		values = append(values, f)
	}
	return values, true
}
