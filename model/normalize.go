package model

import (
	"encoding/json"
	"strings"

	"github.com/alnifu/orgsync-web-sub000/util/log"
)

// embeddedPayload is the legacy representation of poll/feedback data
// serialized into the content column by earlier clients. It is read-only
// compatibility: new writes always go to the side tables.
type embeddedPayload struct {
	Question       string      `json:"question"`
	Options        []string    `json:"options"`
	MultipleChoice bool        `json:"multipleChoice"`
	Description    string      `json:"description"`
	Fields         []FormField `json:"fields"`
}

// BuildDetail normalizes a base row's type tag plus an optional side detail
// into exactly one variant of the Detail union, along with the content to
// display.
//
// A typed post whose side row is missing (a referential-integrity gap in the
// store) degrades to a general projection instead of failing the whole read.
// Content that parses as a structured payload feeds the variant; anything
// else is literal display text.
func BuildDetail(typeTag PostType, side Detail, content string) (Detail, string) {
	if side != nil && side.PostType() == typeTag {
		return fillFromContent(side, content)
	}

	switch typeTag {
	case PostTypePoll:
		if payload, ok := parseEmbedded(content); ok && len(payload.Options) > 0 {
			return &PollDetail{
				Question:       payload.Question,
				Options:        payload.Options,
				MultipleChoice: payload.MultipleChoice,
				Results:        make([]int, len(payload.Options)),
			}, payload.Question
		}
	case PostTypeFeedback:
		if payload, ok := parseEmbedded(content); ok && len(payload.Fields) > 0 {
			return &FeedbackDetail{
				Description: payload.Description,
				Fields:      payload.Fields,
			}, payload.Description
		}
	case PostTypeGeneral:
		return GeneralDetail{}, content
	}

	if typeTag != PostTypeGeneral {
		log.Log.WithField("postType", typeTag).
			Warn("post has no matching side detail, projecting as general")
	}
	return GeneralDetail{}, content
}

// fillFromContent backfills a side detail's question/description from a
// legacy embedded payload when the side row predates those columns.
func fillFromContent(side Detail, content string) (Detail, string) {
	switch detail := side.(type) {
	case *PollDetail:
		if detail.Question == "" {
			if payload, ok := parseEmbedded(content); ok && payload.Question != "" {
				detail.Question = payload.Question
				return detail, payload.Question
			}
			detail.Question = content
		}
		return detail, content
	case *FeedbackDetail:
		if detail.Description == "" {
			if payload, ok := parseEmbedded(content); ok && payload.Description != "" {
				detail.Description = payload.Description
				return detail, payload.Description
			}
			detail.Description = content
		}
		return detail, content
	default:
		return side, content
	}
}

// parseEmbedded attempts to decode content as a serialized payload. Parse
// failure is not an error: most content is plain text.
func parseEmbedded(content string) (*embeddedPayload, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var payload embeddedPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}
