package errors

import (
	"os"
)

// Color 终端颜色
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBoldRed
	ColorBoldYellow
	ColorBoldCyan
)

// ANSI 颜色代码
var ansiCodes = map[Color]string{
	ColorReset:      "\033[0m",
	ColorRed:        "\033[31m",
	ColorGreen:      "\033[32m",
	ColorYellow:     "\033[33m",
	ColorBlue:       "\033[34m",
	ColorMagenta:    "\033[35m",
	ColorCyan:       "\033[36m",
	ColorWhite:      "\033[37m",
	ColorBoldRed:    "\033[1;31m",
	ColorBoldYellow: "\033[1;33m",
	ColorBoldCyan:   "\033[1;36m",
}

// colorsEnabled 是否启用颜色
var colorsEnabled = detectColorSupport()

// detectColorSupport 探测终端是否支持 ANSI 颜色
func detectColorSupport() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}
	return true
}

// ColorsEnabled 当前终端是否启用颜色
func ColorsEnabled() bool { return colorsEnabled }

// SetColorsEnabled 强制开关颜色（CLI --color 参数用）
func SetColorsEnabled(enabled bool) { colorsEnabled = enabled }
