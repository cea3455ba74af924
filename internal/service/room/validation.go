package room

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	videoIdRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	roomIdRule      = []validation.Rule{validation.Required, validation.Length(1, 64)}
	identityRule    = []validation.Rule{validation.Required, validation.Length(1, 128)}
	channelIdRule   = []validation.Rule{validation.Required}
	displayNameRule = []validation.Rule{validation.Required, validation.Length(1, 32)}
	videoIdRule     = []validation.Rule{validation.Required, validation.Match(videoIdRegexp)}
	titleRule       = []validation.Rule{validation.Length(0, 256)}
	userRule        = []validation.Rule{validation.Length(0, 32)}
	messageRule     = []validation.Rule{validation.Required, validation.Length(1, 1000)}
	requestIdRule   = []validation.Rule{validation.Required}
	timeRule        = []validation.Rule{validation.Min(0.0)}
)
