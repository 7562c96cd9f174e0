package web

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	themeQuery  = "theme"
	themeCookie = "aspirations_theme"
	themeMaxAge = 365 * 24 * time.Hour
)

// Theme is a named color palette for the pages.
type Theme struct {
	Name    string
	Bg1     string
	Bg2     string
	Accent1 string
	Accent2 string
	Bar     string
}

// Themes lists the selectable palettes.
var Themes = []Theme{
	{Name: "Vibrant", Bg1: "#ff9a9e", Bg2: "#fad0c4", Accent1: "#667eea", Accent2: "#764ba2", Bar: "#667eea"},
	{Name: "Ocean", Bg1: "#a8edea", Bg2: "#fed6e3", Accent1: "#43cea2", Accent2: "#185a9d", Bar: "#43cea2"},
	{Name: "Sunset", Bg1: "#ffecd2", Bg2: "#fcb69f", Accent1: "#ff7e5f", Accent2: "#feb47b", Bar: "#ff7e5f"},
}

// ThemeByName finds a palette ignoring letter case.
func ThemeByName(name string) (Theme, bool) {
	name = strings.TrimSpace(name)
	for _, t := range Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// resolveTheme picks the theme from the query, then the cookie, then the
// default. A valid query value is remembered in the cookie.
func resolveTheme(c *fiber.Ctx, fallback string) Theme {
	if t, ok := ThemeByName(c.Query(themeQuery)); ok {
		c.Cookie(&fiber.Cookie{
			Name:     themeCookie,
			Value:    t.Name,
			Path:     "/",
			MaxAge:   int(themeMaxAge.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return t
	}
	if t, ok := ThemeByName(c.Cookies(themeCookie)); ok {
		return t
	}
	if t, ok := ThemeByName(fallback); ok {
		return t
	}
	return Themes[0]
}
