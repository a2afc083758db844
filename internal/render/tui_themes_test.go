package render

import (
	"testing"
)

func TestAvailableTUIThemes(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		t.Run(theme.Name, func(t *testing.T) {
			if theme.Description == "" {
				t.Error("theme description should not be empty")
			}
			colors := map[string]string{
				"background":       string(theme.Background),
				"border":           string(theme.Border),
				"primary":          string(theme.Primary),
				"error":            string(theme.Error),
				"text":             string(theme.Text),
				"text dim":         string(theme.TextDim),
				"user bubble":      string(theme.UserBubble),
				"assistant bubble": string(theme.AssistantBubble),
			}
			for name, c := range colors {
				if c == "" {
					t.Errorf("%s color should not be empty", name)
				}
			}
		})
	}
}

func TestGetTUIThemeByName(t *testing.T) {
	tests := []struct {
		name   string
		wantOK bool
	}{
		{"tokyonight", true},
		{"storefront", true},
		{"catppuccin", true},
		{"dracula", true},
		{"nord", false},
		{"", false},
	}

	for _, tt := range tests {
		theme, ok := GetTUIThemeByName(tt.name)
		if ok != tt.wantOK {
			t.Errorf("GetTUIThemeByName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
		}
		if ok && theme.Name != tt.name {
			t.Errorf("GetTUIThemeByName(%q).Name = %s", tt.name, theme.Name)
		}
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme(TokyoNightTheme.Name)

	if !SetTUITheme("storefront") {
		t.Fatal("SetTUITheme(storefront) = false")
	}
	if GetTUITheme().Name != "storefront" {
		t.Errorf("GetTUITheme().Name = %s, want storefront", GetTUITheme().Name)
	}

	if SetTUITheme("does-not-exist") {
		t.Error("SetTUITheme with unknown name = true")
	}
	if GetTUITheme().Name != "storefront" {
		t.Error("unknown theme name changed the active theme")
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	if len(names) != len(AvailableTUIThemes()) {
		t.Fatalf("got %d names for %d themes", len(names), len(AvailableTUIThemes()))
	}
	if names[0] != "tokyonight" {
		t.Errorf("first theme = %s, want tokyonight", names[0])
	}
}
