package grammar

import "embed"

// Capture queries ship inside the binary; an on-disk query in one of the
// loader's search directories takes precedence over these.
//
//go:embed queries/*.scm
var queryAssets embed.FS

func builtinQuery(name string) (string, error) {
	data, err := queryAssets.ReadFile("queries/" + name + ".scm")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
