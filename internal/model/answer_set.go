package model

import "encoding/json"

// Answer sets (selected options, answer keys) are stored as JSON arrays of
// option identifiers in text columns, keeping the payload opaque to the store.

func EncodeAnswerSet(options []string) string {
	if options == nil {
		options = []string{}
	}
	b, _ := json.Marshal(options)
	return string(b)
}

func DecodeAnswerSet(payload string) ([]string, error) {
	if payload == "" {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal([]byte(payload), &options); err != nil {
		return nil, err
	}
	return options, nil
}
