package site

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/guidedocs/internal/output"
)

// IndexPage is always the first nav entry.
const IndexPage = "index.md"

const navKey = "nav"

// UpdateNav replaces the nav key of the mkdocs.yml at path with the index
// page followed by one section per category. Every other key, including
// values with custom tags such as !!python/name, is written back unchanged.
// A missing or empty file gets a document holding only the nav.
func UpdateNav(path string, categories []Category) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return output.NewSystemErrorWithCause("failed to read "+path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return output.NewUserError(fmt.Sprintf("invalid mkdocs config %s: %v", path, err))
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return output.NewUserError(fmt.Sprintf("invalid mkdocs config %s: top level is not a mapping", path))
	}
	setMappingValue(root, navKey, navNode(categories))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return output.NewSystemErrorWithCause("failed to encode "+path, err)
	}
	if err := enc.Close(); err != nil {
		return output.NewSystemErrorWithCause("failed to encode "+path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return output.NewSystemErrorWithCause("failed to write "+path, err)
	}
	return nil
}

// navNode builds [index.md, {Title: [page, ...]}, ...].
func navNode(categories []Category) *yaml.Node {
	nav := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	nav.Content = append(nav.Content, stringNode(IndexPage))

	for _, category := range categories {
		pages := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, page := range category.Channels {
			pages.Content = append(pages.Content, stringNode(page))
		}
		section := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		section.Content = append(section.Content, stringNode(category.Title), pages)
		nav.Content = append(nav.Content, section)
	}
	return nav
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// setMappingValue replaces the value of key in mapping, or appends the pair.
func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, stringNode(key), value)
}
