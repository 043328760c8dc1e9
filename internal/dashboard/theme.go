package dashboard

// Theme is the colour palette shared by the page and the rendered charts.
type Theme struct {
	Name     string `json:"name"`
	BgMain   string `json:"bg_main"`
	BgCard   string `json:"bg_card"`
	TextMain string `json:"text_main"`
	TextSub  string `json:"text_sub"`
	Accent1  string `json:"accent_1"` // primary ticker
	Accent2  string `json:"accent_2"` // comparison ticker
	Success  string `json:"success"`
	Danger   string `json:"danger"`
	Border   string `json:"border"`
}

func (t Theme) Dark() bool { return t.Name == "dark" }

var themes = map[string]Theme{
	"dark": {
		Name:     "dark",
		BgMain:   "#1e2126",
		BgCard:   "#282c34",
		TextMain: "#e0e6ed",
		TextSub:  "#abb2bf",
		Accent1:  "#61afef",
		Accent2:  "#e5c07b",
		Success:  "#98c379",
		Danger:   "#e06c75",
		Border:   "#3b4048",
	},
	"light": {
		Name:     "light",
		BgMain:   "#f4f6f8",
		BgCard:   "#ffffff",
		TextMain: "#24292f",
		TextSub:  "#57606a",
		Accent1:  "#0969da",
		Accent2:  "#bf8700",
		Success:  "#1a7f37",
		Danger:   "#cf222e",
		Border:   "#d0d7de",
	},
}

// ThemeByName returns the named theme, or the dark theme for unknown names.
func ThemeByName(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["dark"]
}
