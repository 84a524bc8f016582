// Package screens holds the two static chat screens of the guide: their
// titles, placeholders, seed conversations and navigation links.
package screens

import (
	"fmt"
	"strings"

	"github.com/diogo/mangroveguide/internal/models"
)

// ID names a screen.
type ID string

const (
	Intro     ID = "intro"
	Karnataka ID = "karnataka"
)

// Definition describes a screen. Seed returns a fresh slice on every call
// so controllers never share entries.
type Definition struct {
	ID          ID
	Title       string
	Placeholder string
	// LineBreaks enables newline interpretation in text bubbles.
	LineBreaks bool
	// Back is the screen reached with esc; empty means esc quits.
	Back ID
	// Links maps button entry ids to the screen they open.
	Links map[string]ID
	Seed  func() []models.Entry
}

const exploreButtonID = "intro-5"

var registry = map[ID]Definition{
	Intro: {
		ID:          Intro,
		Title:       "Mangroves and Coastal Ecosystems 🌊🌴",
		Placeholder: "Ask a question about mangroves...",
		Links:       map[string]ID{exploreButtonID: Karnataka},
		Seed:        introSeed,
	},
	Karnataka: {
		ID:          Karnataka,
		Title:       "Mangroves in Karnataka 🌿",
		Placeholder: "Ask about Karnataka's mangroves...",
		LineBreaks:  true,
		Back:        Intro,
		Seed:        karnatakaSeed,
	},
}

// Get returns the definition for id.
func Get(id ID) (Definition, bool) {
	d, ok := registry[id]
	return d, ok
}

// All returns every screen, starting screen first.
func All() []Definition {
	return []Definition{registry[Intro], registry[Karnataka]}
}

// Parse resolves a screen name, accepting a few aliases.
func Parse(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "intro", "introduction", "home":
		return Intro, nil
	case "karnataka", "detail":
		return Karnataka, nil
	default:
		return "", fmt.Errorf("unknown screen %q (valid: intro, karnataka)", s)
	}
}

// Names lists the canonical screen names.
func Names() []string {
	return []string{string(Intro), string(Karnataka)}
}

func introSeed() []models.Entry {
	return []models.Entry{
		models.NewText("intro-1", models.RoleModel,
			"Hello! Welcome to the 'Mangroves and Coastal Ecosystems' interactive guide. 🌊🌴"),
		models.NewText("intro-2", models.RoleModel,
			"Let's start with the basics. Mangroves are unique trees and shrubs that grow in coastal saline or brackish water. "+
				"They're characterized by their dense tangled root systems that appear above the water."),
		models.NewImages("intro-3", models.RoleModel,
			models.Image{Src: "https://picsum.photos/seed/mangrove1/600/400", Alt: "Dense mangrove forest"},
			models.Image{Src: "https://picsum.photos/seed/mangrove2/600/400", Alt: "Mangrove roots in water"},
		),
		models.NewText("intro-4", models.RoleModel,
			"These ecosystems are incredibly important! They act as a natural barrier, protecting coastal areas from storms and erosion. "+
				"They are also biodiversity hotspots, providing a nursery for fish and a home for countless species, "+
				"while playing a crucial role in regulating our climate by capturing massive amounts of carbon."),
		models.NewButton(exploreButtonID, models.RoleModel, "Explore Karnataka's Mangroves"),
	}
}

func karnatakaSeed() []models.Entry {
	return []models.Entry{
		models.NewText("karnataka-1", models.RoleModel,
			"Karnataka has a significant and beautiful mangrove cover along its coast. Let's explore the major regions!"),
		models.NewText("karnataka-2", models.RoleModel, strings.Join([]string{
			"Here are the key areas:",
			"1. **Karwar (Uttara Kannada)**: Known for its thick mangrove forests along the Kali river estuary.",
			"2. **Honnavar and Kumta**: Home to extensive mangrove ecosystems in the Sharavathi and Aghanashini estuaries.",
			"3. **Aghanashini Estuary**: One of the most pristine mangrove habitats in India.",
			"4. **Udupi (Kundapura region)**: Features numerous mangrove patches in the Gangolli-Aghanashini river systems.",
			"5. **Mangalore**: Found at the confluence of the Netravati and Gurupura rivers.",
		}, "\n")),
		models.NewImages("karnataka-3", models.RoleModel,
			models.Image{Src: "https://picsum.photos/seed/karwar/600/400", Alt: "Karwar Mangroves", Label: "Karwar"},
			models.Image{Src: "https://picsum.photos/seed/honnavar/600/400", Alt: "Honnavar Mangroves", Label: "Honnavar"},
			models.Image{Src: "https://picsum.photos/seed/udupi/600/400", Alt: "Udupi Mangroves", Label: "Udupi"},
			models.Image{Src: "https://picsum.photos/seed/mangalore/600/400", Alt: "Mangalore Estuary", Label: "Mangalore"},
		),
		models.NewText("karnataka-4", models.RoleModel,
			"The Karnataka Forest Department, along with local NGOs, is actively involved in conservation efforts, "+
				"including mangrove plantation drives and creating awareness among local communities to protect these vital ecosystems."),
	}
}
