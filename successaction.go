package lnurl

import "net/url"

// SuccessActionParams is the raw success action object of a pay invoice
// response (LUD-09). Which fields are set depends on Tag.
type SuccessActionParams struct {
	Tag         string  `json:"tag"`
	Message     *string `json:"message,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Ciphertext  *string `json:"ciphertext,omitempty"`
	IV          *string `json:"iv,omitempty"`
}

// SuccessAction is one of MessageAction, URLAction, *AESParams or
// UnknownAction.
type SuccessAction interface {
	// ActionTag returns the tag of the success action.
	ActionTag() string

	// Params returns the raw form of the success action.
	Params() SuccessActionParams
}

// MessageAction asks the wallet to display a message.
type MessageAction struct {
	Message string
}

func (m MessageAction) ActionTag() string { return "message" }

func (m MessageAction) Params() SuccessActionParams {
	return SuccessActionParams{Tag: m.ActionTag(), Message: &m.Message}
}

// URLAction asks the wallet to offer opening a URL.
type URLAction struct {
	URL         *url.URL
	Description string
}

func (u URLAction) ActionTag() string { return "url" }

func (u URLAction) Params() SuccessActionParams {
	link := u.URL.String()
	return SuccessActionParams{
		Tag:         u.ActionTag(),
		URL:         &link,
		Description: &u.Description,
	}
}

func (a *AESParams) ActionTag() string { return "aes" }

func (a *AESParams) Params() SuccessActionParams {
	return SuccessActionParams{
		Tag:         a.ActionTag(),
		Description: &a.Description,
		Ciphertext:  &a.Ciphertext,
		IV:          &a.IV,
	}
}

// UnknownAction is a success action of a tag this package does not know, or
// of a known tag that lacks required fields. It keeps every raw field.
type UnknownAction struct {
	Raw SuccessActionParams
}

func (u UnknownAction) ActionTag() string           { return u.Raw.Tag }
func (u UnknownAction) Params() SuccessActionParams { return u.Raw }

// SuccessActionFromParams selects the success action variant from its tag.
// It never fails: incomplete parameter sets become an UnknownAction.
func SuccessActionFromParams(p SuccessActionParams) SuccessAction {
	switch p.Tag {
	case "message":
		if p.Message == nil {
			return UnknownAction{Raw: p}
		}

		return MessageAction{Message: *p.Message}

	case "url":
		if p.URL == nil || p.Description == nil {
			return UnknownAction{Raw: p}
		}

		link, err := url.Parse(*p.URL)
		if err != nil || !link.IsAbs() {
			return UnknownAction{Raw: p}
		}

		return URLAction{URL: link, Description: *p.Description}

	case "aes":
		if p.Description == nil || p.Ciphertext == nil || p.IV == nil {
			return UnknownAction{Raw: p}
		}

		return &AESParams{
			Description: *p.Description,
			Ciphertext:  *p.Ciphertext,
			IV:          *p.IV,
		}

	default:
		return UnknownAction{Raw: p}
	}
}
