package launcher

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meghashyamc/migemosearch/plugin"
)

const notifierBuffer = 16

type notifyMsg plugin.Message

// Notifier forwards plugin messages to the status line. Messages beyond the buffer are dropped.
type Notifier struct {
	messages chan plugin.Message
}

func NewNotifier() *Notifier {
	return &Notifier{messages: make(chan plugin.Message, notifierBuffer)}
}

func (n *Notifier) ShowMsg(title string, subTitle string) {
	select {
	case n.messages <- plugin.Message{Title: title, SubTitle: subTitle}:
	default:
	}
}

func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		return notifyMsg(<-n.messages)
	}
}

// Run starts the launcher on the terminal and blocks until it exits.
func Run(p Plugin, notifier *Notifier) error {
	_, err := tea.NewProgram(NewModel(p, notifier), tea.WithAltScreen()).Run()
	return err
}
