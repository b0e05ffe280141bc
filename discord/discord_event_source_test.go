package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type recordingHandler struct {
	got   []*discordgo.Message
	panic bool
}

func (h *recordingHandler) HandleMessage(m *discordgo.Message) {
	if h.panic {
		panic("handler exploded")
	}
	h.got = append(h.got, m)
}

func testSession() *discordgo.Session {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: "bot"}
	return &discordgo.Session{State: state}
}

func TestDispatchIgnoresOwnMessages(t *testing.T) {
	h := &recordingHandler{}
	d := &EventSource{handler: h}
	s := testSession()

	d.dispatchMessageCreateEvent(s, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "1", Author: &discordgo.User{ID: "bot"}}})
	d.dispatchMessageCreateEvent(s, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "2", Author: &discordgo.User{ID: "user"}}})

	if len(h.got) != 1 || h.got[0].ID != "2" {
		t.Errorf("handled %v", h.got)
	}
}

func TestDispatchRecoversFromPanics(t *testing.T) {
	d := &EventSource{handler: &recordingHandler{panic: true}}
	d.dispatchMessageCreateEvent(testSession(), &discordgo.MessageCreate{Message: &discordgo.Message{Author: &discordgo.User{ID: "user"}}})
}
