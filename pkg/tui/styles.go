package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha
const (
	primaryColor   = "#89b4fa" // Blue
	secondaryColor = "#a6e3a1" // Green
	accentColor    = "#fab387" // Peach
	mauveColor     = "#cba6f7" // Mauve

	successColor = "#a6e3a1" // Green
	warningColor = "#f9e2af" // Yellow
	errorColor   = "#f38ba8" // Red
	infoColor    = "#94e2d5" // Teal

	textColor     = "#cdd6f4" // Text
	subtext0Color = "#a6adc8" // Subtext0

	mantleColor   = "#181825" // Mantle
	crustColor    = "#11111b" // Crust
	cardBgColor   = "#313244" // Surface0
	surface2Color = "#585b70" // Surface2

	mutedColor  = "#6c7086" // Overlay0
	borderColor = "#45475a" // Surface1
)

var (
	BaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(textColor))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(successColor)).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor)).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor)).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(infoColor)).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtext0Color))

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(textColor)).
			Background(lipgloss.Color(mantleColor)).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true).
			MarginBottom(1).
			Align(lipgloss.Center)

	AddressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(accentColor)).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor)).
			Italic(true)

	QuantumBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(crustColor)).
				Background(lipgloss.Color(mauveColor)).
				Padding(0, 1).
				Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(borderColor)).
			Padding(0, 1)

	FocusedBoxStyle = BoxStyle.
			BorderForeground(lipgloss.Color(primaryColor))

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(mauveColor)).
			Background(lipgloss.Color(surface2Color)).
			Padding(1, 4).
			AlignHorizontal(lipgloss.Center)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(crustColor)).
			Background(lipgloss.Color(primaryColor)).
			Bold(true).
			Padding(0, 2).
			MarginRight(1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(mutedColor)).
				Background(lipgloss.Color(cardBgColor)).
				Padding(0, 2).
				MarginRight(1)

	// Tray cards; the left border carries the severity
	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(textColor)).
			Background(lipgloss.Color(cardBgColor)).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(infoColor))

	DestructiveNoticeStyle = NoticeStyle.
				BorderForeground(lipgloss.Color(errorColor))

	HelpBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(subtext0Color)).
			Padding(0, 1)
)
