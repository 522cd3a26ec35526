package app

import "charm.land/lipgloss/v2"

var (
	headerStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	menuDropStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	contextMenuHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmDialogBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	tabStyle                 = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	tabActiveStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true).Padding(0, 1)
	noteTitleStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	noteMetaStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	likedStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
	approvedBadgeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	pendingBadgeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true)
	errorStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	copiedStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	commentAuthorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	commentMetaStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	fieldLabelStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	fieldFocusedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	dropdownHighlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239"))
	panelBorderStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	toastInfoStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
