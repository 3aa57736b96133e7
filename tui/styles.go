// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/songfinder/session"
)

var (
	colorAccent   = lipgloss.Color("#7D56F4")
	colorMuted    = lipgloss.Color("#8A8A8A")
	colorSuccess  = lipgloss.Color("#04B575")
	colorWarning  = lipgloss.Color("#E5C07B")
	colorError    = lipgloss.Color("#E06C75")
	colorInfo     = lipgloss.Color("#61AFEF")
	colorSelected = lipgloss.Color("#F5A623")
	colorSpinner  = colorAccent
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorAccent).
			Padding(0, 1)

	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	cardTitle     = lipgloss.NewStyle().Bold(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	selectedBadge = lipgloss.NewStyle().Foreground(colorSelected).Bold(true)
	toggleStyle   = lipgloss.NewStyle().Foreground(colorInfo).Underline(true)

	selectedPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSelected).
			Padding(0, 1)

	placeholderPanel = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Foreground(colorMuted).
				Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(1, 2)

	warningBanner = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorWarning).
			Foreground(colorWarning).
			Padding(0, 1)
)

func messageStyle(kind session.MessageKind) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch kind {
	case session.MessageSuccess:
		return style.Foreground(colorSuccess)
	case session.MessageWarning:
		return style.Foreground(colorWarning)
	case session.MessageError:
		return style.Foreground(colorError)
	default:
		return style.Foreground(colorInfo)
	}
}
