package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

func (d Dependencies) withDefaults() Dependencies {
	if d.UIHooks.RunOnUI == nil {
		d.UIHooks.RunOnUI = fyne.Do
	}
	if d.UIHooks.RunAsync == nil {
		d.UIHooks.RunAsync = func(fn func()) { go fn() }
	}
	if d.UIHooks.ShowErrorDialog == nil {
		d.UIHooks.ShowErrorDialog = dialog.ShowError
	}

	return d
}
