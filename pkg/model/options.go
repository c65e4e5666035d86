package model

// ColorMode selects the surface theme
type ColorMode string

const (
	ColorModeLight ColorMode = "light"
	ColorModeDark  ColorMode = "dark"
)

// Valid reports whether m is a known color mode
func (m ColorMode) Valid() bool {
	return m == ColorModeLight || m == ColorModeDark
}

// EdgeOptions are defaults applied to edges created by a connect gesture
type EdgeOptions struct {
	Animated bool `json:"animated" koanf:"animated"`
}

// SurfaceOptions is display-only configuration passed through to the rendering surface.
// None of it affects the graph state.
type SurfaceOptions struct {
	FitView            bool        `json:"fitView" koanf:"fit-view"`
	FitViewPadding     float64     `json:"fitViewPadding" koanf:"fit-view-padding"`
	ColorMode          ColorMode   `json:"colorMode" koanf:"color-mode"`
	DefaultEdgeOptions EdgeOptions `json:"defaultEdgeOptions" koanf:"edges"`
	HideAttribution    bool        `json:"hideAttribution" koanf:"hide-attribution"`
}

// DefaultSurfaceOptions mirrors the board the diagram was first built for:
// fit on load with generous padding and a light theme.
func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		FitView:        true,
		FitViewPadding: 2,
		ColorMode:      ColorModeLight,
	}
}
