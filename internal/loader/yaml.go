package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// parseYAML walks the node tree rather than decoding into structs so that
// key order and line numbers survive.
func parseYAML(name string, src []byte) ([]schema.Declaration, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return nil, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, yamlErrorf(name, doc, "schema must be a mapping")
	}

	var decls []schema.Declaration
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		pos := yamlPos(name, key)
		switch key.Value {
		case keyImports:
			specs, err := yamlStrings(name, val)
			if err != nil {
				return nil, err
			}
			d := schema.Declaration{Keyword: schema.KeywordImport, Pos: pos}
			for _, s := range specs {
				imp, err := parseImportSpec(s)
				if err != nil {
					return nil, yamlErrorf(name, val, "%v", err)
				}
				d.Imports = append(d.Imports, imp)
			}
			decls = append(decls, d)
		case keyComponents, keyEvents, keyTraits:
			names, err := yamlStrings(name, val)
			if err != nil {
				return nil, err
			}
			decls = append(decls, schema.Declaration{Keyword: key.Value, Pos: pos, Names: names})
		case keySystems:
			items, err := yamlMappings(name, val)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				sys, err := yamlSystem(name, item)
				if err != nil {
					return nil, err
				}
				decls = append(decls, schema.Declaration{
					Keyword: schema.KeywordSystem,
					Pos:     yamlPos(name, item),
					System:  sys,
				})
			}
		case keyConstructors:
			items, err := yamlMappings(name, val)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				ctor, err := yamlConstructor(name, item)
				if err != nil {
					return nil, err
				}
				decls = append(decls, schema.Declaration{
					Keyword:     schema.KeywordEntityConstructor,
					Pos:         yamlPos(name, item),
					Constructor: ctor,
				})
			}
		default:
			decls = append(decls, schema.Declaration{Keyword: key.Value, Pos: pos})
		}
	}
	return decls, nil
}

func yamlSystem(file string, n *yaml.Node) (*schema.SystemDecl, error) {
	sys := &schema.SystemDecl{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value == keyName {
			if val.Kind != yaml.ScalarNode {
				return nil, yamlErrorf(file, val, "system name must be a string")
			}
			sys.Name = val.Value
			continue
		}
		args, err := yamlStringOrList(file, val)
		if err != nil {
			return nil, err
		}
		c := schema.Clause{Keyword: key.Value, Pos: yamlPos(file, key)}
		for _, a := range args {
			c.Args = append(c.Args, parseArg(a))
		}
		sys.Clauses = append(sys.Clauses, c)
	}
	return sys, nil
}

func yamlConstructor(file string, n *yaml.Node) (*schema.ConstructorDecl, error) {
	ctor := &schema.ConstructorDecl{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyName, keyFunc, keyBody:
			if val.Kind != yaml.ScalarNode {
				return nil, yamlErrorf(file, val, "%s must be a string", key.Value)
			}
			switch key.Value {
			case keyName:
				ctor.Name = val.Value
			case keyFunc:
				ctor.Func = val.Value
			default:
				ctor.Body = val.Value
			}
		case keyParams:
			params, err := yamlStrings(file, val)
			if err != nil {
				return nil, err
			}
			for _, p := range params {
				param, err := parseParam(p)
				if err != nil {
					return nil, yamlErrorf(file, val, "%v", err)
				}
				ctor.Params = append(ctor.Params, param)
			}
		case keyComponents:
			comps, err := yamlStrings(file, val)
			if err != nil {
				return nil, err
			}
			ctor.Components = comps
		default:
			return nil, yamlErrorf(file, key, "unknown constructor key %q", key.Value)
		}
	}
	return ctor, nil
}

func yamlStrings(file string, n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, yamlErrorf(file, n, "expected a list of strings")
	}
	out := make([]string, 0, len(n.Content))
	for _, el := range n.Content {
		if el.Kind != yaml.ScalarNode {
			return nil, yamlErrorf(file, el, "expected a string")
		}
		out = append(out, el.Value)
	}
	return out, nil
}

func yamlStringOrList(file string, n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
		return []string{n.Value}, nil
	}
	return yamlStrings(file, n)
}

func yamlMappings(file string, n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, yamlErrorf(file, n, "expected a list of mappings")
	}
	for _, el := range n.Content {
		if el.Kind != yaml.MappingNode {
			return nil, yamlErrorf(file, el, "expected a mapping")
		}
	}
	return n.Content, nil
}

func yamlPos(file string, n *yaml.Node) schema.Pos {
	return schema.Pos{File: file, Line: n.Line, Column: n.Column}
}

func yamlErrorf(file string, n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s: %s", yamlPos(file, n), fmt.Sprintf(format, args...))
}
