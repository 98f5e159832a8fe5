package compiler

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// ArtifactInfo is the metadata recorded in a compiled artifact's
// frontmatter
type ArtifactInfo struct {
	Path        string
	Description string
	Version     string
	Modules     map[string]string
}

// Inspect parses the frontmatter of a compiled skill artifact
func Inspect(path string) (*ArtifactInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact '%s'", path)
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrapf(err, "failed to parse artifact '%s'", path)
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.Errorf("artifact '%s' has no frontmatter", path)
	}

	info := &ArtifactInfo{
		Path:    path,
		Modules: map[string]string{},
	}

	if description, ok := metaData["description"].(string); ok {
		info.Description = description
	}
	info.Version = stringValue(metaData["darwin_version"])

	if modules, ok := metaData["darwin_modules"].(map[interface{}]interface{}); ok {
		for k, v := range modules {
			moduleType, ok := k.(string)
			if !ok {
				continue
			}
			info.Modules[moduleType] = stringValue(v)
		}
	}

	if info.Version == "" {
		return nil, errors.Errorf("artifact '%s' is missing darwin_version", path)
	}

	return info, nil
}

// stringValue renders a frontmatter scalar; version labels like 1.0 can
// decode as numbers
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
