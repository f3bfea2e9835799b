package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"hostavail/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reValidTZ         = regexp.MustCompile(`^[A-Za-z0-9_\-+/]+$`)
	reMultiSlash      = regexp.MustCompile(`/+`)
	reMultiUnderscore = regexp.MustCompile(`_+`)
)

// TrimAndNormalize trims s and collapses inner whitespace runs to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func SanitizeIdentifier(id string) string {
	return strings.TrimSpace(id)
}

func SanitizeObjectID(id string) string {
	return Pipeline{strings.TrimSpace, strings.ToLower}.Apply(id)
}

// SanitizeTimeZone tidies an IANA name. Names with characters no zone uses are
// only trimmed so the validator reports them as given.
func SanitizeTimeZone(tz string) string {
	tz = strings.TrimSpace(tz)
	if tz == "" || !reValidTZ.MatchString(tz) {
		return tz
	}
	return Pipeline{
		func(s string) string { return reMultiSlash.ReplaceAllString(s, "/") },
		func(s string) string { return reMultiUnderscore.ReplaceAllString(s, "_") },
		func(s string) string { return strings.Trim(s, "/") },
	}.Apply(tz)
}

func SanitizeCheckRequest(req *model.AvailabilityCheckRequest) {
	if req == nil {
		return
	}
	req.EventTypeID = SanitizeObjectID(req.EventTypeID)
	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
	req.TimeZone = SanitizeTimeZone(req.TimeZone)
	for i := range req.Users {
		req.Users[i].ID = SanitizeIdentifier(req.Users[i].ID)
	}
}

func SanitizeValidateLengthRequest(req *model.ValidateLengthRequest) {
	if req == nil {
		return
	}
	req.EventTypeID = SanitizeObjectID(req.EventTypeID)
	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
}
