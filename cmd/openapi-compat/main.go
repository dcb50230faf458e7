// Package main provides a CLI to check OpenAPI backward compatibility
// between two swagger.yaml revisions. It flags removed paths, removed
// operations, and removed response codes; additions are always allowed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// apiSurface maps "METHOD path" to the set of declared response codes.
type apiSurface map[string]map[string]struct{}

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml path")
	revisionPath := flag.String("revision", "", "revision OpenAPI swagger.yaml path")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> -revision <path>")
		os.Exit(2)
	}

	base, err := loadSurface(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadSurface(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadSurface(path string) (apiSurface, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return nil, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return nil, errors.New("paths is not an object")
	}

	surface := make(apiSurface)
	for pathKey, pathEntry := range pathsMap {
		ops, ok := toMap(pathEntry)
		if !ok {
			continue
		}
		for methodKey, methodEntry := range ops {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			responses := make(map[string]struct{})
			if responsesRaw, exists := methodMap["responses"]; exists {
				if responsesMap, ok := toMap(responsesRaw); ok {
					for code := range responsesMap {
						normalized := strings.ToLower(strings.TrimSpace(code))
						if normalized != "" {
							responses[normalized] = struct{}{}
						}
					}
				}
			}

			surface[strings.ToUpper(method)+" "+pathKey] = responses
		}
	}

	return surface, nil
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func compare(base, revision apiSurface) []string {
	var issues []string

	for op, baseResponses := range base {
		revResponses, ok := revision[op]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed operation: %s", op))
			continue
		}
		for code := range baseResponses {
			if _, ok := revResponses[code]; !ok {
				issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", op, strings.ToUpper(code)))
			}
		}
	}

	sort.Strings(issues)
	return issues
}
