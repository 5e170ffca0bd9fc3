package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a rule file with metadata, dropped into the packs directory.
// Pack rules are merged after the base rules.
type Pack struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PackVersion string `yaml:"version"`
	Author      string `yaml:"author"`
	Sets        `yaml:",inline"`
}

// PackInfo is a summary of a pack for listing.
type PackInfo struct {
	Name        string
	Description string
	Version     string
	Author      string
	Enabled     bool
	Path        string
	RuleCount   int
	Err         error
}

// LoadPacks reads every .yaml file in packsDir and merges the enabled ones
// into base. A pack is disabled when its file name starts with an underscore.
// A pack that fails to parse is reported in its PackInfo and skipped.
func LoadPacks(packsDir string, base *Tables) (*Tables, []PackInfo, error) {
	var infos []PackInfo

	entries, err := os.ReadDir(packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil, nil
		}
		return nil, nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	result := base.clone()
	merged := 0

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(packsDir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			infos = append(infos, PackInfo{
				Name:    baseName,
				Enabled: enabled,
				Path:    path,
				Err:     err,
			})
			continue
		}

		info := PackInfo{
			Name:        pack.Name,
			Description: pack.Description,
			Version:     pack.PackVersion,
			Author:      pack.Author,
			Enabled:     enabled,
			Path:        path,
			RuleCount:   pack.WriteTools.Size() + pack.SensitivePaths.Size() + pack.SecretContent.Size() + pack.ShellFilter.Size(),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}
		result.merge(pack.Sets)
		merged++
	}

	if merged == 0 {
		return base, infos, nil
	}
	if err := result.Compile(); err != nil {
		return nil, infos, fmt.Errorf("packs in %s: %w", packsDir, err)
	}
	return result, infos, nil
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack %s: %w", path, err)
	}

	// Reject packs whose patterns do not compile so one bad pack cannot
	// poison the merged tables.
	candidate := &Tables{Sets: pack.Sets}
	if err := candidate.Compile(); err != nil {
		return nil, fmt.Errorf("pack %s: %w", path, err)
	}

	return &pack, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
