package types

import (
	"fmt"
	"strings"
)

// CallbackDelimiter separates action and param in button payloads. Params are
// not escaped; links carried in practice never contain it.
const CallbackDelimiter = "|"

// MaxCallbackDataLen is the Bot API limit for callback_data, in bytes.
const MaxCallbackDataLen = 64

type ActionKind string

const (
	ActionCheckMembership ActionKind = "check_membership"
	ActionDownload        ActionKind = "download"
)

// Action is a decoded button payload. Link is set only for ActionDownload.
type Action struct {
	Kind ActionKind
	Link string
}

func CheckMembership() Action {
	return Action{Kind: ActionCheckMembership}
}

func Download(link string) Action {
	return Action{Kind: ActionDownload, Link: link}
}

func (a Action) Encode() string {
	if a.Kind == ActionDownload {
		return string(a.Kind) + CallbackDelimiter + a.Link
	}
	return string(a.Kind)
}

// DecodeCallback parses a payload into an Action. Unknown actions and a
// download without a link are ErrInvalidInput.
func DecodeCallback(data string) (Action, error) {
	action, param, hasParam := strings.Cut(data, CallbackDelimiter)
	if hasParam {
		// Only the first param segment is meaningful.
		param, _, _ = strings.Cut(param, CallbackDelimiter)
	}
	switch ActionKind(action) {
	case ActionCheckMembership:
		return CheckMembership(), nil
	case ActionDownload:
		if strings.TrimSpace(param) == "" {
			return Action{}, fmt.Errorf("%w: download without link", ErrInvalidInput)
		}
		return Download(param), nil
	}
	return Action{}, fmt.Errorf("%w: unknown callback action %q", ErrInvalidInput, action)
}
