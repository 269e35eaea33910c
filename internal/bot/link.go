package bot

import (
	"fmt"
	"regexp"
)

var (
	meetingIDPattern = regexp.MustCompile(`/(?:j|wc/join)/(\d+)`)
	passcodePattern  = regexp.MustCompile(`\?pwd=([\w.]+)`)
)

// MeetingLink is the parsed identity of a Zoom meeting URL.
type MeetingLink struct {
	MeetingID string
	Passcode  string
}

// ParseMeetingLink extracts the meeting id and optional passcode from a
// Zoom invite URL.
func ParseMeetingLink(url string) (MeetingLink, error) {
	idMatch := meetingIDPattern.FindStringSubmatch(url)
	if idMatch == nil {
		return MeetingLink{}, fmt.Errorf("no meeting id in link: %s", url)
	}

	link := MeetingLink{MeetingID: idMatch[1]}
	if pwdMatch := passcodePattern.FindStringSubmatch(url); pwdMatch != nil {
		link.Passcode = pwdMatch[1]
	}
	return link, nil
}

// JoinURL returns the web client join URL for the meeting.
func (l MeetingLink) JoinURL() string {
	return "https://zoom.us/wc/join/" + l.MeetingID
}
