package loader

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/l1jgo/ecsgen/internal/schema"
)

func parseTOML(name string, src []byte) ([]schema.Declaration, error) {
	var doc map[string]any
	md, err := toml.Decode(string(src), &doc)
	if err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}

	// MetaData keeps keys in document order.
	var order []string
	for _, key := range md.Keys() {
		if len(key) == 1 {
			order = append(order, key[0])
		}
	}
	return declsFromTree(name, doc, order)
}
