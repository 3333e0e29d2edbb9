package service

import (
	"fmt"
	"strings"
)

// DurationSpec — срок действия доступа из формы: величина и единица измерения.
type DurationSpec struct {
	Expires int    `json:"expires"`
	Measure string `json:"measure"`
}

const defaultMagnitude = 60

var measureSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ToSeconds переводит спецификацию срока в секунды. Отсутствующие или
// некорректные значения заменяются умолчаниями (60 часов), ошибки не
// возвращаются.
func ToSeconds(spec DurationSpec) int64 {
	magnitude := int64(spec.Expires)
	if magnitude <= 0 {
		magnitude = defaultMagnitude
	}

	multiplier, ok := measureSeconds[spec.Measure]
	if !ok {
		multiplier = measureSeconds["h"]
	}

	return magnitude * multiplier
}

// FriendlyDelta форматирует остаток времени в читаемую строку
// вида "2 days, 3 hours".
func FriendlyDelta(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	type part struct {
		value int64
		unit  string
	}

	var parts []part
	switch {
	case days > 0:
		parts = []part{{days, "day"}, {hours, "hour"}, {minutes, "minute"}, {secs, "second"}}
	case hours > 0:
		parts = []part{{hours, "hour"}, {minutes, "minute"}, {secs, "second"}}
	case minutes > 0:
		parts = []part{{minutes, "minute"}, {secs, "second"}}
	default:
		parts = []part{{secs, "second"}}
	}

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		unit := p.unit
		if p.value != 1 {
			unit += "s"
		}
		names = append(names, fmt.Sprintf("%d %s", p.value, unit))
	}

	return strings.Join(names, ", ")
}
