package evolution

import (
	"fmt"
	"strings"

	"github.com/darwinhq/darwin/pkg/skillstore"
)

// historyWindow bounds the anti-oscillation lookback: only the most
// recent records count as "recently tried".
const historyWindow = 10

const descriptorArrow = "→"

// FormatMutation renders the history descriptor for a module transition
func FormatMutation(moduleType, oldVersion, newVersion string) string {
	return fmt.Sprintf("%s: %s %s %s", moduleType, oldVersion, descriptorArrow, newVersion)
}

// ParseMutation parses a history descriptor back into its module type and
// target version. Returns ok=false for malformed descriptors.
func ParseMutation(descriptor string) (moduleType, toVersion string, ok bool) {
	parts := strings.Split(descriptor, descriptorArrow)
	if len(parts) != 2 {
		return "", "", false
	}

	toVersion = strings.TrimSpace(parts[1])

	moduleParts := strings.Split(parts[0], ":")
	if len(moduleParts) != 2 {
		return "", "", false
	}
	moduleType = strings.TrimSpace(moduleParts[0])

	return moduleType, toVersion, true
}

// RecentlyTried returns the set of "<module>:<version>" keys attempted in
// the recent history window. Malformed records are skipped; a corrupted
// record must not block evolution of the skill.
func RecentlyTried(history []skillstore.HistoryRecord) map[string]struct{} {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	tried := make(map[string]struct{}, len(recent))
	for _, record := range recent {
		moduleType, toVersion, ok := ParseMutation(record.Mutation)
		if !ok {
			continue
		}
		tried[variantKey(moduleType, toVersion)] = struct{}{}
	}

	return tried
}

func variantKey(moduleType, version string) string {
	return moduleType + ":" + version
}
