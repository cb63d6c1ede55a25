package godot

import (
	"bufio"
	"bytes"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/ini.v1"
)

// LoadPresets reads the [preset.N] sections of an export_presets.cfg file in index order.
// [preset.N.options] sections are ignored.
func LoadPresets(path string) ([]model.ExportPreset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read export presets", goerr.V("path", path))
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
		IgnoreInlineComment:     true,
	}, dropContinuationLines(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse export presets", goerr.V("path", path))
	}

	var presets []model.ExportPreset
	for _, section := range cfg.Sections() {
		index, ok := presetIndex(section.Name())
		if !ok {
			continue
		}

		presets = append(presets, model.ExportPreset{
			Index:      index,
			Name:       section.Key("name").String(),
			Platform:   section.Key("platform").String(),
			ExportPath: section.Key("export_path").String(),
		})
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Index < presets[j].Index
	})

	return presets, nil
}

// presetIndex returns N for a section named "preset.N"
func presetIndex(section string) (int, bool) {
	rest, ok := strings.CutPrefix(section, "preset.")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return index, true
}

// FilterPresets keeps presets whose name is in names. Empty names keeps all.
// Unknown names are an error.
func FilterPresets(presets []model.ExportPreset, names []string) ([]model.ExportPreset, error) {
	if len(names) == 0 {
		return presets, nil
	}

	known := make(map[string]bool, len(presets))
	for _, p := range presets {
		known[p.Name] = true
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if !known[name] {
			return nil, goerr.New("export preset not found", goerr.V("preset", name))
		}
		wanted[name] = true
	}

	var filtered []model.ExportPreset
	for _, p := range presets {
		if wanted[p.Name] {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// dropContinuationLines removes the continuation lines of multi-line quoted values.
// Godot writes remote deploy scripts that way and they are not valid INI.
func dropContinuationLines(data []byte) []byte {
	var out bytes.Buffer
	open := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		odd := countQuotes(line)%2 == 1

		if open {
			if odd {
				open = false
			}
			continue
		}
		if odd && strings.Contains(line, "=") {
			open = true
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.Bytes()
}

// countQuotes counts double quotes not escaped by a backslash
func countQuotes(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			n++
		}
	}
	return n
}
