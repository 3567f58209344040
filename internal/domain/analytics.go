package domain

import (
	"fmt"
	"strings"
)

// AnalyticsLevel задает интенсивность аналитики. Пока только переносится в конфиге.
type AnalyticsLevel string

const (
	AnalyticsBasic    AnalyticsLevel = "Basic"
	AnalyticsAdvanced AnalyticsLevel = "Advanced"
	AnalyticsExpert   AnalyticsLevel = "Expert"
)

// ParseAnalyticsLevel регистронезависимый, на выходе всегда каноничная форма.
func ParseAnalyticsLevel(s string) (AnalyticsLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return AnalyticsBasic, nil
	case "advanced":
		return AnalyticsAdvanced, nil
	case "expert":
		return AnalyticsExpert, nil
	}
	return "", fmt.Errorf("unknown analytics level %q", s)
}

func (l AnalyticsLevel) String() string { return string(l) }

func (l *AnalyticsLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseAnalyticsLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l AnalyticsLevel) MarshalText() ([]byte, error) {
	return []byte(l), nil
}
