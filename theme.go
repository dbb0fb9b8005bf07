package ateneo

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Question  int // User question accent
	Reasoning int // Reasoning block text
	Error     int // Error messages
	Success   int // Success indicators
	Muted     int // Status bar, placeholders
	Accent    int // Course name, headings
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Question:  4,
		Reasoning: 8,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
