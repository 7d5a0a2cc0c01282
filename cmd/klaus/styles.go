package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	AppName   lipgloss.Style
	Prompt    lipgloss.Style
	Comment   lipgloss.Style
	ToolCall  lipgloss.Style
	ErrHeader lipgloss.Style
	SHA1      lipgloss.Style
	Timeago   lipgloss.Style
}

func makeStyles(r *lipgloss.Renderer) (s styles) {
	s.AppName = r.NewStyle().Bold(true)
	s.Prompt = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00B594", Dark: "#3EEFCF"}).Bold(true)
	s.Comment = r.NewStyle().Foreground(lipgloss.Color("#757575"))
	s.ToolCall = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF71D0", Dark: "#FF78D2"})
	s.ErrHeader = r.NewStyle().Foreground(lipgloss.Color("#F1F1F1")).Background(lipgloss.Color("#FF5F87")).Bold(true).Padding(0, 1).SetString("ERROR")
	s.SHA1 = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5DD6C0", Dark: "#427C72"})
	s.Timeago = r.NewStyle().Foreground(lipgloss.Color("#585858"))
	return s
}
