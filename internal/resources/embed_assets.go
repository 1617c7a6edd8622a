package resources

import _ "embed"

//go:embed icons/app_dark.svg
var appIconDark []byte

//go:embed icons/app_light.svg
var appIconLight []byte
