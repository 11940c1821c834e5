package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionBingo = "bingo"
)

// Bingo sub-actions.
const (
	bingoStart   = "start"
	bingoAnswer  = "ans"
	bingoOption  = "opt"
	bingoConfirm = "confirm"
	bingoEdit    = "edit"
	bingoResult  = "result"
)

// Boolean answer values on the wire.
const (
	answerYes = "yes"
	answerNo  = "no"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildStartCallback builds callback data for starting or resuming a set.
func buildStartCallback(setID int64) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoStart, strconv.FormatInt(setID, 10)},
	}.encode()
}

// buildAnswerCallback builds callback data for a yes/no answer.
func buildAnswerCallback(setID, questionID int64, value string) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoAnswer, strconv.FormatInt(setID, 10), strconv.FormatInt(questionID, 10), value},
	}.encode()
}

// buildOptionCallback builds callback data for a multiple-choice answer.
func buildOptionCallback(setID, questionID int64, optionIndex int) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoOption, strconv.FormatInt(setID, 10), strconv.FormatInt(questionID, 10), strconv.Itoa(optionIndex)},
	}.encode()
}

// buildConfirmCallback builds callback data for submitting the collected card.
func buildConfirmCallback(setID int64) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoConfirm, strconv.FormatInt(setID, 10)},
	}.encode()
}

// buildEditCallback builds callback data for restarting the walk.
func buildEditCallback(setID int64) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoEdit, strconv.FormatInt(setID, 10)},
	}.encode()
}

// buildResultCallback builds callback data for the personal score view.
func buildResultCallback(setID int64) string {
	return callbackData{
		Action: actionBingo,
		Params: []string{bingoResult, strconv.FormatInt(setID, 10)},
	}.encode()
}
