package loader

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// declsFromTree converts a decoded TOML or Lua document. order lists the
// top-level keys in source order where the format keeps it; keys missing
// from order follow in the canonical order, then alphabetically.
func declsFromTree(file string, doc map[string]any, order []string) ([]schema.Declaration, error) {
	keys := orderKeys(doc, order)
	pos := schema.Pos{File: file}

	var decls []schema.Declaration
	for _, key := range keys {
		v := doc[key]
		switch key {
		case keyImports:
			specs, err := stringList(key, v)
			if err != nil {
				return nil, err
			}
			d := schema.Declaration{Keyword: schema.KeywordImport, Pos: pos}
			for _, s := range specs {
				imp, err := parseImportSpec(s)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				d.Imports = append(d.Imports, imp)
			}
			decls = append(decls, d)
		case keyComponents, keyEvents, keyTraits:
			names, err := stringList(key, v)
			if err != nil {
				return nil, err
			}
			decls = append(decls, schema.Declaration{Keyword: key, Pos: pos, Names: names})
		case keySystems:
			items, err := tableList(key, v)
			if err != nil {
				return nil, err
			}
			for i, item := range items {
				sys, err := systemFromTable(item)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
				}
				decls = append(decls, schema.Declaration{Keyword: schema.KeywordSystem, Pos: pos, System: sys})
			}
		case keyConstructors:
			items, err := tableList(key, v)
			if err != nil {
				return nil, err
			}
			for i, item := range items {
				ctor, err := constructorFromTable(item)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
				}
				decls = append(decls, schema.Declaration{Keyword: schema.KeywordEntityConstructor, Pos: pos, Constructor: ctor})
			}
		default:
			decls = append(decls, schema.Declaration{Keyword: key, Pos: pos})
		}
	}
	return decls, nil
}

func orderKeys(doc map[string]any, order []string) []string {
	keys := make([]string, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	for _, k := range order {
		if _, ok := doc[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	rest := slices.SortedFunc(maps.Keys(doc), func(a, b string) int {
		ra, rb := slices.Index(topLevelKeys, a), slices.Index(topLevelKeys, b)
		if ra < 0 {
			ra = len(topLevelKeys)
		}
		if rb < 0 {
			rb = len(topLevelKeys)
		}
		return cmp.Or(cmp.Compare(ra, rb), cmp.Compare(a, b))
	})
	for _, k := range rest {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func systemFromTable(t map[string]any) (*schema.SystemDecl, error) {
	sys := &schema.SystemDecl{}
	if v, ok := t[keyName]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("name: expected a string, got %T", v)
		}
		sys.Name = name
	}

	clauses := make([]string, 0, len(t))
	for k := range t {
		if k != keyName {
			clauses = append(clauses, k)
		}
	}
	slices.SortFunc(clauses, func(a, b string) int {
		return cmp.Or(cmp.Compare(clauseRank(a), clauseRank(b)), cmp.Compare(a, b))
	})

	for _, k := range clauses {
		args, err := stringOrList(k, t[k])
		if err != nil {
			return nil, err
		}
		c := schema.Clause{Keyword: k}
		for _, a := range args {
			c.Args = append(c.Args, parseArg(a))
		}
		sys.Clauses = append(sys.Clauses, c)
	}
	return sys, nil
}

func constructorFromTable(t map[string]any) (*schema.ConstructorDecl, error) {
	ctor := &schema.ConstructorDecl{}
	for _, k := range slices.Sorted(maps.Keys(t)) {
		v := t[k]
		switch k {
		case keyName, keyFunc, keyBody:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected a string, got %T", k, v)
			}
			switch k {
			case keyName:
				ctor.Name = s
			case keyFunc:
				ctor.Func = s
			default:
				ctor.Body = s
			}
		case keyParams:
			params, err := stringList(k, v)
			if err != nil {
				return nil, err
			}
			for _, p := range params {
				param, err := parseParam(p)
				if err != nil {
					return nil, err
				}
				ctor.Params = append(ctor.Params, param)
			}
		case keyComponents:
			comps, err := stringList(k, v)
			if err != nil {
				return nil, err
			}
			ctor.Components = comps
		default:
			return nil, fmt.Errorf("unknown constructor key %q", k)
		}
	}
	return ctor, nil
}

func stringList(key string, v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap && len(m) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: expected a list of strings, got %T", key, v)
	}
	out := make([]string, 0, len(list))
	for i, el := range list {
		s, ok := el.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, got %T", key, i, el)
		}
		out = append(out, s)
	}
	return out, nil
}

func stringOrList(key string, v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	return stringList(key, v)
}

func tableList(key string, v any) ([]map[string]any, error) {
	switch v := v.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, el := range v {
			t, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: expected a table, got %T", key, i, el)
			}
			out = append(out, t)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected a list of tables, got %T", key, v)
	}
}
