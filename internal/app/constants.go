package app

const (
	Name             = "webbrowser"
	DisplayName      = "Web Browser"
	ConfigFilename   = "config.json"
	DBFilename       = "app.db"
	LogFilename      = "app.log"
	EnvFilename      = "webbrowser.env"
	IconCacheDirname = "icons"
	WriterQueueDepth = 256
)
