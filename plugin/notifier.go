package plugin

import (
	"sync"

	"github.com/meghashyamc/migemosearch/logger"
)

type Message struct {
	Title    string
	SubTitle string
}

// LogNotifier records messages for hosts that poll for them and logs each one.
type LogNotifier struct {
	logger logger.Logger

	mu       sync.Mutex
	messages []Message
}

func NewLogNotifier(logger logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ShowMsg(title string, subTitle string) {
	n.logger.Info("notification", "title", title, "sub_title", subTitle)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{Title: title, SubTitle: subTitle})
}

// Drain returns the messages shown since the last call.
func (n *LogNotifier) Drain() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	messages := n.messages
	n.messages = nil
	return messages
}
