package scanner

import (
	"github.com/Boo15mario/access-launcher/internal/scanner/desktop"
)

// Group is one of the fixed classification buckets. The declaration order
// is the priority order: when an entry's categories match more than one
// group, the lowest-valued group wins the tie-break.
type Group int

const (
	GroupTerminalEmulator Group = iota
	GroupInternet
	GroupGames
	GroupAudioVideo
	GroupGraphics
	GroupDevelopment
	GroupAccessories
	GroupTextEditors
	GroupOffice
	GroupUtilities
	GroupSystem
	GroupOther
)

var groupNames = [...]string{
	GroupTerminalEmulator: "Terminal Emulator",
	GroupInternet:         "Internet",
	GroupGames:            "Games",
	GroupAudioVideo:       "Audio/Video",
	GroupGraphics:         "Graphics",
	GroupDevelopment:      "Development",
	GroupAccessories:      "Accessories",
	GroupTextEditors:      "Text Editors",
	GroupOffice:           "Office",
	GroupUtilities:        "Utilities",
	GroupSystem:           "System",
	GroupOther:            "Other",
}

func (g Group) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return "Other"
	}
	return groupNames[g]
}

// Groups returns every group in display order.
func Groups() []Group {
	groups := make([]Group, len(groupNames))
	for i := range groups {
		groups[i] = Group(i)
	}
	return groups
}

// GroupByName resolves a display name back to its group.
func GroupByName(name string) (Group, bool) {
	for i, n := range groupNames {
		if n == name {
			return Group(i), true
		}
	}
	return GroupOther, false
}

// groupKeywords maps raw desktop-entry category tokens to their group.
var groupKeywords = map[string]Group{
	"TerminalEmulator":  GroupTerminalEmulator,
	"Terminal":          GroupTerminalEmulator,
	"Network":           GroupInternet,
	"WebBrowser":        GroupInternet,
	"Internet":          GroupInternet,
	"Game":              GroupGames,
	"Games":             GroupGames,
	"Audio":             GroupAudioVideo,
	"AudioVideo":        GroupAudioVideo,
	"AudioVideoEditing": GroupAudioVideo,
	"Video":             GroupAudioVideo,
	"VideoConference":   GroupAudioVideo,
	"Graphics":          GroupGraphics,
	"Photography":       GroupGraphics,
	"Development":       GroupDevelopment,
	"IDE":               GroupDevelopment,
	"Programming":       GroupDevelopment,
	"Accessory":         GroupAccessories,
	"Accessories":       GroupAccessories,
	"TextEditor":        GroupTextEditors,
	"Office":            GroupOffice,
	"Utility":           GroupUtilities,
	"Utilities":         GroupUtilities,
	"System":            GroupSystem,
	"Settings":          GroupSystem,
}

// Classify maps an entry's raw category list to exactly one group in a
// single pass over the tokens, keeping the best-priority match seen.
// Unmatched or absent categories fall back to Other.
func Classify(categories desktop.List) Group {
	best := GroupOther
	for token := range categories.Tokens() {
		if group, ok := groupKeywords[token]; ok && group < best {
			best = group
		}
	}
	return best
}
