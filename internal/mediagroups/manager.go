// Package mediagroups collects Telegram album messages, which arrive as
// separate updates sharing a media group ID, into a single batch.
package mediagroups

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mymmrac/telego"
)

const (
	// DefaultProcessDelay is how long to wait after the first album message
	// before handing the batch to the processor.
	DefaultProcessDelay = 2 * time.Second
	// DefaultMaxGroupSize limits the number of messages stored per group.
	DefaultMaxGroupSize = 10
)

// ProcessFunc handles a completed media group: the group ID and the
// collected messages sorted by message ID.
type ProcessFunc func(ctx context.Context, groupID string, messages []telego.Message) error

type groupState struct {
	mu       sync.Mutex
	messages []telego.Message
	timer    *time.Timer
}

// Manager accumulates media group messages and fires a processor once per
// group after a quiet period.
type Manager struct {
	groups sync.Map // map[string]*groupState
}

// NewManager creates a new media group manager.
func NewManager() *Manager {
	return &Manager{}
}

// HandleMessage adds an album message to its group. The first message of a
// group schedules processing after the given delay; messages beyond maxSize
// are dropped.
func (m *Manager) HandleMessage(ctx context.Context, message telego.Message, handler ProcessFunc, delay time.Duration, maxSize int) error {
	if message.MediaGroupID == "" {
		return nil
	}
	groupID := message.MediaGroupID

	val, _ := m.groups.LoadOrStore(groupID, &groupState{
		messages: make([]telego.Message, 0, maxSize),
	})
	state := val.(*groupState)

	state.mu.Lock()
	defer state.mu.Unlock()

	for _, msg := range state.messages {
		if msg.MessageID == message.MessageID {
			return nil
		}
	}
	if len(state.messages) >= maxSize {
		log.Printf("[MediaGroups Group:%s] Group limit (%d) reached, message %d dropped", groupID, maxSize, message.MessageID)
		return nil
	}

	state.messages = append(state.messages, message)
	sort.Slice(state.messages, func(i, j int) bool {
		return state.messages[i].MessageID < state.messages[j].MessageID
	})

	if state.timer == nil {
		state.timer = time.AfterFunc(delay, func() {
			// The update context is long gone when the timer fires.
			processCtx := context.Background()
			messages := m.takeGroup(groupID)
			if len(messages) == 0 {
				return
			}
			if err := handler(processCtx, groupID, messages); err != nil {
				log.Printf("[MediaGroups Group:%s] Error processing group: %v", groupID, err)
			}
		})
	}
	return nil
}

// takeGroup atomically removes and returns a group's messages.
func (m *Manager) takeGroup(groupID string) []telego.Message {
	val, loaded := m.groups.LoadAndDelete(groupID)
	if !loaded {
		return nil
	}
	state := val.(*groupState)

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	out := make([]telego.Message, len(state.messages))
	copy(out, state.messages)
	return out
}

// Shutdown stops all pending group timers.
func (m *Manager) Shutdown() {
	stopped := 0
	m.groups.Range(func(_, value interface{}) bool {
		state := value.(*groupState)
		state.mu.Lock()
		if state.timer != nil {
			if state.timer.Stop() {
				stopped++
			}
			state.timer = nil
		}
		state.mu.Unlock()
		return true
	})
	log.Printf("[MediaGroups] Shutdown complete. Stopped %d active timer(s)", stopped)
}
