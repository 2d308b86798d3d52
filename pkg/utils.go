package pkg

import (
	"math"
	"strings"
)

// Round8 округляет денежную величину до 8 знаков, как хранит база
func Round8(value float64) float64 {
	return math.Round(value*1e8) / 1e8
}

// TruncateString обрезает строку до max рун, добавляя многоточие
func TruncateString(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
