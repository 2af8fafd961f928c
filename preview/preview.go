package preview

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// Run plays m in the terminal until the user quits.
func Run(m Model) error {
	program := tea.NewProgram(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		if _, ok := <-sigChan; ok {
			program.Quit()
		}
	}()

	_, err := program.Run()
	return err
}
