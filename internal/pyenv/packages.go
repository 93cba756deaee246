package pyenv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NotInstalled is reported for a library missing from the environment
const NotInstalled = "Not installed"

// Packages maps lowercase package names to installed versions.
type Packages map[string]string

type pipPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// listPackages runs "pip list" with the given interpreter
func listPackages(ctx context.Context, python string) (Packages, error) {
	out, err := runCommand(ctx, python, "-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return parsePipList(out)
}

func parsePipList(out []byte) (Packages, error) {
	var list []pipPackage
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("failed to parse pip output: %w", err)
	}

	pkgs := make(Packages, len(list))
	for _, p := range list {
		if p.Name == "" {
			continue
		}
		pkgs[strings.ToLower(p.Name)] = p.Version
	}
	return pkgs, nil
}

// Resolve returns the installed version of lib on the platform goos, or
// NotInstalled.
//
// Libraries with a Prefix fall back to scanning every installed package
// for a name starting with it. Go map iteration is randomized, so when
// several such variants are installed the one reported is arbitrary.
func (p Packages) Resolve(lib Library, goos string) string {
	if goos == "windows" && lib.WindowsPackage != "" {
		if v, ok := p[strings.ToLower(lib.WindowsPackage)]; ok {
			return v
		}
	}

	if v, ok := p[strings.ToLower(lib.PackageName)]; ok {
		return v
	}

	if lib.Prefix != "" {
		prefix := strings.ToLower(lib.Prefix)
		for name, v := range p {
			if strings.HasPrefix(strings.ToLower(name), prefix) {
				return v
			}
		}
	}

	return NotInstalled
}
