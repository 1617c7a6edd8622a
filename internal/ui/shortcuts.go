package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

func bindShortcuts(window fyne.Window, view *mainView) {
	canvas := window.Canvas()
	canvas.AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyL, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { view.focusAddress() },
	)
	canvas.AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { view.Reload() },
	)
	canvas.AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyLeft, Modifier: fyne.KeyModifierAlt},
		func(fyne.Shortcut) { view.GoBack() },
	)
	canvas.AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyRight, Modifier: fyne.KeyModifierAlt},
		func(fyne.Shortcut) { view.GoForward() },
	)
	canvas.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyF5:
			view.Reload()
		case fyne.KeyF11:
			view.toggleFullScreen()
		case fyne.KeyEscape:
			if window.FullScreen() {
				window.SetFullScreen(false)
			}
		}
	})
}
