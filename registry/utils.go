package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	"github.com/yoheimuta/go-protoparser/v4/parser"
)

// getAllProtoInfo parses entryFile and DFS-walks its import statements,
// parsing every transitively imported file exactly once and recording each
// file's own imports in r.protoEntities. Well-known-type imports
// (google/protobuf/*) are skipped: this registry has no descriptor.proto
// model to resolve them against, and the decoder itself has no built-in
// handling for the well-known wrapper/struct types.
func (r *Registry) getAllProtoInfo(entryFile string) ([]string, error) {
	visited := make(map[string]struct{})
	order := make([]string, 0)

	var dfs func(path string) error
	dfs = func(path string) error {
		if _, ok := visited[path]; ok {
			return nil
		}
		visited[path] = struct{}{}
		order = append(order, path)

		proto, err := r.parseFile(path)
		if err != nil {
			return err
		}

		entity := &protoFileEntity{imports: make([]string, 0)}
		for _, body := range proto.ProtoBody {
			imp, ok := body.(*parser.Import)
			if !ok {
				continue
			}
			importPath := strings.Trim(imp.Location, `"`)
			if strings.HasPrefix(importPath, "google/protobuf/") {
				continue
			}
			resolved, err := r.findIfProtoExists(importPath)
			if err != nil {
				return err
			}
			entity.imports = append(entity.imports, resolved)
			if err := dfs(resolved); err != nil {
				return err
			}
		}
		r.protoEntities[path] = entity
		return nil
	}

	entryPath, err := r.findIfProtoExists(entryFile)
	if err != nil {
		return nil, err
	}
	if err := dfs(entryPath); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Registry) parseFile(path string) (*parser.Proto, error) {
	if proto, ok := r.parsedProtoBody[path]; ok {
		return proto, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	defer f.Close()

	proto, err := protoparser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("registry: parsing %s: %w", path, err)
	}
	r.parsedProtoBody[path] = proto
	return proto, nil
}

// findIfProtoExists resolves protoPath (an entry path or an import
// location) against r.ProtoDirectories, trying each in order.
func (r *Registry) findIfProtoExists(protoPath string) (string, error) {
	protoPath = strings.Trim(protoPath, `"`)
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("registry: not a .proto file: %s", protoPath)
	}

	if filepath.IsAbs(protoPath) {
		if _, err := os.Stat(protoPath); err == nil {
			return protoPath, nil
		}
	}
	for _, dir := range r.ProtoDirectories {
		candidate := filepath.Join(dir, protoPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(protoPath); err == nil {
		return protoPath, nil
	}
	return "", fmt.Errorf("registry: proto file not found in search path: %s", protoPath)
}
