package ui

import (
	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/skobkin/webbrowser/internal/app"
	"github.com/skobkin/webbrowser/internal/connectors"
	"github.com/skobkin/webbrowser/internal/resources"
)

var newFyneApp = func() fyne.App {
	return fyneapp.NewWithID(app.Name)
}

// Run opens the browser window and blocks until it is closed.
func Run(dep Dependencies) error {
	return runWithApp(dep, newFyneApp())
}

func runWithApp(dep Dependencies, fyApp fyne.App) error {
	setLogger(dep.Logger)
	dep = dep.withDefaults()
	fyApp.SetIcon(resources.AppIconResource(fyApp.Settings().ThemeVariant()))
	appLogger.Info(
		"starting UI runtime",
		"start_url", dep.Data.StartURL,
		"chromeless", dep.Launch.Chromeless,
		"fullscreen", dep.Launch.Fullscreen,
	)

	window := fyApp.NewWindow(windowTitle(""))
	window.Resize(fyne.NewSize(
		float32(dep.Data.Config.UI.WindowWidth),
		float32(dep.Data.Config.UI.WindowHeight),
	))
	view := buildMainView(dep, window)
	window.SetContent(view.content)

	stopListeners := startPageEventListeners(
		dep.Data.Bus,
		func(loaded connectors.PageLoaded) {
			dep.UIHooks.RunOnUI(func() { view.showLoaded(loaded) })
		},
		func(failed connectors.PageFailed) {
			dep.UIHooks.RunOnUI(func() { view.showFailed(failed) })
		},
	)

	uiRuntime := newUIRuntime(fyApp, window, view.stop, stopListeners, dep.Actions.OnQuit)
	uiRuntime.BindCloseIntercept()
	bindShortcuts(window, view)

	view.Navigate(dep.Data.StartURL)
	uiRuntime.Run(dep.Launch.Fullscreen)

	return nil
}
