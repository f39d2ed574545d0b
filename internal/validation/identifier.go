package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	tmdbIDPattern    = regexp.MustCompile(`^[1-9][0-9]{0,9}$`)
	channelIDPattern = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
)

// ValidateVideoID checks that id has the shape the YouTube API uses.
func ValidateVideoID(id string) error {
	if !youtubeIDPattern.MatchString(id) {
		return fmt.Errorf("invalid video id %q", truncate(id))
	}
	return nil
}

// ValidateMovieID checks that id is a TMDB numeric movie id.
func ValidateMovieID(id string) error {
	if !tmdbIDPattern.MatchString(id) {
		return fmt.Errorf("invalid movie id %q", truncate(id))
	}
	return nil
}

// ValidateChannelID checks that id is a YouTube channel id.
func ValidateChannelID(id string) error {
	if !channelIDPattern.MatchString(id) {
		return fmt.Errorf("invalid channel id %q", truncate(id))
	}
	return nil
}

// SanitizeQuery turns line breaks and tabs into spaces and drops other
// control characters. Everything else, length included, is kept verbatim;
// encoding is the transport's job.
func SanitizeQuery(input string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > 32 {
		return string(r[:32]) + "…"
	}
	return s
}
