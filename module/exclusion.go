package module

import (
	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
)

//Exclusions is the set of users and roles exempt from one module in one guild
type Exclusions []guildmodels.Exclusion

//Contains returns true iff excl is part of the set
func (es Exclusions) Contains(excl guildmodels.Exclusion) bool {
	for _, e := range es {
		if e == excl {
			return true
		}
	}
	return false
}

//ShouldExclude returns true if the message author is excluded, or if their member object holds an excluded role.
//Gateway messages carry the member separately from the user, so both are checked without an API call.
func (es Exclusions) ShouldExclude(author *discordgo.User, member *discordgo.Member) bool {
	for _, e := range es {
		switch e.Kind {
		case guildmodels.ExclusionUser:
			if author != nil && author.ID == e.ID {
				logrus.Debugf("Matched user exclusion: %v", e.ID)
				return true
			}
		case guildmodels.ExclusionRole:
			if member == nil {
				continue
			}
			for _, role := range member.Roles {
				if role == e.ID {
					logrus.Debugf("Matched role exclusion: %v in %v", e.ID, member.Roles)
					return true
				}
			}
		}
	}
	return false
}
