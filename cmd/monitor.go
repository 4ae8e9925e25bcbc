// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/urgscan/pkg/scip"
	"github.com/Thermoquad/urgscan/pkg/urg"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const maxMonitorLogEntries = 100

// sparkRunes render the range profile, shortest to longest.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live scan monitor (TUI)",
	Long: `Stream distance scans continuously and show a live view: scan rate,
timestamps, range bounds, a coarse profile of the surroundings, and an
error log. Press q to quit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// Error log entry
type monitorLogEntry struct {
	timestamp time.Time
	message   string
}

// scanMsg carries one received scan (or its error) into the model.
type scanMsg struct {
	ranges    []int
	steps     int
	timestamp int
	err       error
	what      string
}

type monitorTickMsg time.Time

// monitorModel is the Bubble Tea model for the live scan view.
type monitorModel struct {
	product  string
	connInfo string
	maxRange int

	stats    *urg.Statistics
	latest   scanMsg
	errorLog []monitorLogEntry
	logView  viewport.Model

	scans <-chan scanMsg

	width    int
	height   int
	quitting bool
}

// Styles
var (
	monitorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)

	monitorLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	monitorValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	monitorErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	monitorProfileStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))
)

func runMonitor(cmd *cobra.Command, args []string) error {
	driver, connInfo, err := OpenDriver()
	if err != nil {
		return err
	}
	defer driver.Close()

	if err := driver.StartMeasurement(scip.Distance, 0, 0); err != nil {
		return fmt.Errorf("start measurement: %s", driver.What())
	}

	maxRange, _ := driver.MaxDistance()
	scans := make(chan scanMsg, 1)
	done := make(chan struct{})
	go monitorScanLoop(driver, scans, done)

	m := monitorModel{
		product:  driver.ProductType(),
		connInfo: connInfo,
		maxRange: maxRange,
		stats:    urg.NewStatistics(),
		logView:  viewport.New(80, 6),
		scans:    scans,
	}

	p := tea.NewProgram(&m, tea.WithAltScreen())
	_, runErr := p.Run()

	close(done)
	for range scans {
		// Drain until the scan loop stops the measurement and exits.
	}
	return runErr
}

// monitorScanLoop receives scans on the caller's behalf and owns the
// driver until done closes.
func monitorScanLoop(driver *urg.Driver, scans chan<- scanMsg, done <-chan struct{}) {
	defer close(scans)

	maxData, _ := driver.MaxDataSize()
	ranges := make([]int, maxData)

	for {
		select {
		case <-done:
			driver.StopMeasurement()
			return
		default:
		}

		var timestamp int
		steps, err := driver.GetDistance(ranges, &timestamp)

		msg := scanMsg{steps: steps, timestamp: timestamp, err: err, what: driver.What()}
		if err == nil {
			msg.ranges = make([]int, steps)
			copy(msg.ranges, ranges[:steps])
		}

		select {
		case scans <- msg:
		case <-done:
			driver.StopMeasurement()
			return
		}
	}
}

func waitForScan(scans <-chan scanMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-scans
		if !ok {
			return nil
		}
		return msg
	}
}

func monitorTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(waitForScan(m.scans), monitorTick())
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width
		return m, nil

	case scanMsg:
		m.stats.Update(msg.ranges, msg.steps, msg.timestamp, msg.err)
		if msg.err != nil {
			m.appendLog(msg.what)
		} else {
			m.latest = msg
		}
		return m, waitForScan(m.scans)

	case monitorTickMsg:
		m.stats.UpdateRates()
		return m, monitorTick()
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *monitorModel) appendLog(message string) {
	m.errorLog = append(m.errorLog, monitorLogEntry{
		timestamp: time.Now(),
		message:   message,
	})
	if len(m.errorLog) > maxMonitorLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-maxMonitorLogEntries:]
	}

	var b strings.Builder
	for _, e := range m.errorLog {
		fmt.Fprintf(&b, "[%s] %s\n", e.timestamp.Format("15:04:05.000"), e.message)
	}
	m.logView.SetContent(b.String())
	m.logView.GotoBottom()
}

func (m *monitorModel) View() string {
	if m.quitting {
		return "Stopping measurement...\n"
	}

	var b strings.Builder

	title := fmt.Sprintf("Urgscan Monitor — %s (%s)", m.product, m.connInfo)
	b.WriteString(monitorTitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(monitorLabelStyle.Render("Scans: "))
	b.WriteString(monitorValueStyle.Render(fmt.Sprintf("%d valid, %d errors, %.1f/s",
		m.stats.ValidScans, m.stats.ErrorCount(), m.stats.ScanRate)))
	b.WriteString("\n")

	b.WriteString(monitorLabelStyle.Render("Last:  "))
	b.WriteString(monitorValueStyle.Render(fmt.Sprintf("%d steps, timestamp %08d, range %d..%d mm",
		m.stats.LastSteps, m.stats.LastTimestamp, m.stats.MinRange, m.stats.MaxRange)))
	b.WriteString("\n\n")

	b.WriteString(monitorProfileStyle.Render(m.renderProfile()))
	b.WriteString("\n\n")

	if len(m.errorLog) > 0 {
		b.WriteString(monitorErrorStyle.Render("Errors"))
		b.WriteString("\n")
		b.WriteString(m.logView.View())
		b.WriteString("\n")
	}

	b.WriteString(monitorLabelStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// renderProfile draws the latest scan as one line of spark bars, nearest
// readings tallest so obstacles stand out.
func (m *monitorModel) renderProfile() string {
	width := m.width - 2
	if width < 10 {
		width = 78
	}
	if m.latest.steps == 0 || m.maxRange <= 0 {
		return strings.Repeat(" ", width)
	}

	runes := make([]rune, width)
	for col := 0; col < width; col++ {
		// Nearest reading within this column's slice of the scan.
		lo := col * m.latest.steps / width
		hi := (col + 1) * m.latest.steps / width
		if hi <= lo {
			hi = lo + 1
		}
		nearest := 0
		for _, r := range m.latest.ranges[lo:min(hi, m.latest.steps)] {
			if r > 0 && (nearest == 0 || r < nearest) {
				nearest = r
			}
		}
		if nearest == 0 {
			runes[col] = ' '
			continue
		}
		level := (m.maxRange - nearest) * (len(sparkRunes) - 1) / m.maxRange
		runes[col] = sparkRunes[clamp(level, 0, len(sparkRunes)-1)]
	}
	return string(runes)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
