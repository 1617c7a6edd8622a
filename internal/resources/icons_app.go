// Package resources embeds the application artwork.
package resources

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var appIconResources = map[fyne.ThemeVariant]fyne.Resource{
	theme.VariantDark:  fyne.NewStaticResource("app_dark.svg", appIconDark),
	theme.VariantLight: fyne.NewStaticResource("app_light.svg", appIconLight),
}

// AppIconResource returns the window icon for variant, defaulting to the dark artwork.
func AppIconResource(variant fyne.ThemeVariant) fyne.Resource {
	if res, ok := appIconResources[variant]; ok {
		return res
	}

	return appIconResources[theme.VariantDark]
}
