package classify

// ColorPair holds the display colors for a category badge.
type ColorPair struct {
	Background string
	Foreground string
}

const (
	defaultIcon = "tag"
)

var defaultColors = ColorPair{Background: "#e2e8f0", Foreground: "#334155"}

var categoryIcons = map[Category]string{
	FoodDining:     "utensils",
	Groceries:      "shopping-cart",
	Transportation: "car",
	Entertainment:  "film",
	Shopping:       "shopping-bag",
	Utilities:      "zap",
	Healthcare:     "heart-pulse",
	Other:          defaultIcon,
}

var categoryColors = map[Category]ColorPair{
	FoodDining:     {Background: "#fee2e2", Foreground: "#b91c1c"},
	Groceries:      {Background: "#dcfce7", Foreground: "#15803d"},
	Transportation: {Background: "#dbeafe", Foreground: "#1d4ed8"},
	Entertainment:  {Background: "#f3e8ff", Foreground: "#7e22ce"},
	Shopping:       {Background: "#ffedd5", Foreground: "#c2410c"},
	Utilities:      {Background: "#fef9c3", Foreground: "#a16207"},
	Healthcare:     {Background: "#fce7f3", Foreground: "#be185d"},
	Other:          defaultColors,
}

// Icon returns the icon identifier for a category, or the shared default
// for unknown input.
func Icon(cat Category) string {
	if icon, ok := categoryIcons[cat]; ok {
		return icon
	}
	return defaultIcon
}

// Colors returns the display color pair for a category, or the shared
// default for unknown input.
func Colors(cat Category) ColorPair {
	if colors, ok := categoryColors[cat]; ok {
		return colors
	}
	return defaultColors
}
