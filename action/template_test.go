package action

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestRender(t *testing.T) {
	vars := map[string]string{"user": "<@1>", "channel": "<#2>"}
	tests := []struct {
		tmpl    string
		want    string
		wantErr bool
	}{
		{"plain text", "plain text", false},
		{"{user} crossposted in {channel}", "<@1> crossposted in <#2>", false},
		{"{user}{user}", "<@1><@1>", false},
		{"literal {{braces}}", "literal {braces}", false},
		{"lone } is kept", "lone } is kept", false},
		{"", "", false},
		{"{nope}", "", true},
		{"{}", "", true},
		{"unterminated {user", "", true},
		{"trailing {", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Render(tt.tmpl, vars)
			if tt.wantErr {
				var tmplErr *TemplateError
				if !errors.As(err, &tmplErr) {
					t.Fatalf("Render() error = %v, want TemplateError", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Render() = %q, %v, want %q", got, err, tt.want)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	msg := &discordgo.Message{
		ID:        "3",
		ChannelID: "2",
		GuildID:   "1",
		Author:    &discordgo.User{ID: "4"},
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	got, err := Render("{user} {channel} {timestamp} {link}", Variables(msg))
	if err != nil {
		t.Fatal(err)
	}
	want := "<@4> <#2> 2024-03-01T12:00:00Z https://discord.com/channels/1/2/3"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
