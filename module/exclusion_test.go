package module

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
)

func TestShouldExclude(t *testing.T) {
	excls := Exclusions{
		guildmodels.UserExclusion("u1"),
		guildmodels.RoleExclusion("r1"),
	}
	tests := []struct {
		name   string
		author *discordgo.User
		member *discordgo.Member
		want   bool
	}{
		{"excluded user", &discordgo.User{ID: "u1"}, nil, true},
		{"excluded role", &discordgo.User{ID: "u2"}, &discordgo.Member{Roles: []string{"r0", "r1"}}, true},
		{"no match", &discordgo.User{ID: "u2"}, &discordgo.Member{Roles: []string{"r0"}}, false},
		{"no member", &discordgo.User{ID: "u2"}, nil, false},
		{"role id equal to user id", &discordgo.User{ID: "r1"}, nil, false},
		{"user id held as role", &discordgo.User{ID: "u3"}, &discordgo.Member{Roles: []string{"u1"}}, false},
		{"nil author", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := excls.ShouldExclude(tt.author, tt.member); got != tt.want {
				t.Errorf("ShouldExclude() = %v, want %v", got, tt.want)
			}
		})
	}

	if (Exclusions{}).ShouldExclude(&discordgo.User{ID: "u1"}, nil) {
		t.Error("empty exclusion set should exclude nobody")
	}
}
