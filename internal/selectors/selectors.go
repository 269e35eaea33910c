// Package selectors holds the CSS selector contract against the Zoom web
// client. The markup is a brittle external surface: when Zoom ships a new
// client build the table can be overridden from a YAML file without
// touching the capture code.
package selectors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps logical UI roles to CSS selectors.
type Table struct {
	TranscriptContainer  string `yaml:"transcript_container"`
	TranscriptItem       string `yaml:"transcript_item"`
	TranscriptPersonName string `yaml:"transcript_person_name"`
	TranscriptText       string `yaml:"transcript_text"`
	TranscriptTime       string `yaml:"transcript_time"`

	EndMeetingButton string `yaml:"end_meeting_button"`
	UserNameElement  string `yaml:"user_name_element"`

	ChatContainer   string `yaml:"chat_container"`
	ChatButton      string `yaml:"chat_button"`
	ChatItem        string `yaml:"chat_item"`
	ChatPersonName  string `yaml:"chat_person_name"`
	ChatMessageText string `yaml:"chat_message_text"`
	ChatTimeStamp   string `yaml:"chat_time_stamp"`
	ChatMessageBox  string `yaml:"chat_message_box"`

	MeetingTitleButton  string `yaml:"meeting_title_button"`
	MeetingTitleElement string `yaml:"meeting_title_element"`

	MoreButton               string `yaml:"more_button"`
	CaptionsLink             string `yaml:"captions_link"`
	EnableCaptionOption      string `yaml:"enable_caption_option"`
	ShowCaptionsOption       string `yaml:"show_captions_option"`
	ViewFullTranscriptOption string `yaml:"view_full_transcript_option"`
}

// Default returns the selector table for the current Zoom web client build.
func Default() Table {
	return Table{
		TranscriptContainer:  "#full-transcription",
		TranscriptItem:       ".lt-full-transcript__item",
		TranscriptPersonName: ".lt-full-transcript__display-name",
		TranscriptText:       ".lt-full-transcript__message",
		TranscriptTime:       ".lt-full-transcript__time",

		EndMeetingButton: ".footer__leave-btn-container button",
		UserNameElement:  ".participants-section-container",

		ChatContainer:   ".chat-item-container",
		ChatButton:      `button[aria-label="open the chat panel"]`,
		ChatItem:        ".chat-item-container",
		ChatPersonName:  ".chat-item__sender",
		ChatMessageText: ".new-chat-message__text-box p",
		ChatTimeStamp:   ".new-chat-item__chat-info-time-stamp",
		ChatMessageBox:  ".new-chat-message__text-box",

		MeetingTitleButton:  "#meeting-info-indication",
		MeetingTitleElement: ".meeting-info-icon__meeting-topic-text",

		MoreButton:               `button[aria-label="More meeting control"]`,
		CaptionsLink:             `a[aria-label="Captions"]`,
		EnableCaptionOption:      ".zm-btn--primary",
		ShowCaptionsOption:       `a[aria-label="Your caption settings grouping Show Captions"]`,
		ViewFullTranscriptOption: `a[aria-label="Your caption settings grouping View full transcript"]`,
	}
}

// Load merges YAML overrides from path on top of the default table.
// An empty path returns the defaults unchanged.
func Load(path string) (Table, error) {
	table := Default()
	if path == "" {
		return table, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read selectors file: %v", err)
	}

	if err := yaml.Unmarshal(file, &table); err != nil {
		return table, fmt.Errorf("failed to parse selectors file: %v", err)
	}

	return table, nil
}
