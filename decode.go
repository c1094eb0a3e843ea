package lnurl

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// validate checks the field constraints of decoded responses. It caches
// struct metadata and is safe for concurrent use.
var validate = validator.New()

// DecodeResponse decodes the body of a first-level LNURL request into the
// response type its tag selects. A service that answers with an ERROR
// envelope instead yields a *ServiceError.
func DecodeResponse(body []byte) (LnURLResponse, error) {
	obj, err := parseObject(body)
	if err != nil {
		return nil, err
	}

	tagField := obj.Get("tag")
	if !tagField.Exists() {
		if err := statusError(obj); err != nil {
			return nil, err
		}
	}
	if tagField.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing tag", ErrInvalidResponse)
	}

	tag, err := ParseTag(tagField.Str)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagPayRequest:
		var resp PayResponse
		if err := decodeStrict(body, &resp); err != nil {
			return nil, err
		}

		return &resp, nil

	case TagWithdrawRequest:
		var resp WithdrawResponse
		if err := decodeStrict(body, &resp); err != nil {
			return nil, err
		}

		return &resp, nil

	case TagChannelRequest:
		var resp ChannelResponse
		if err := decodeStrict(body, &resp); err != nil {
			return nil, err
		}

		return &resp, nil

	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownTag, tag)
	}
}

// DecodeStatus decodes a callback response envelope. An ERROR status yields
// a *ServiceError, an OK status decodes the rest of the body into T. Use
// struct{} for callbacks that only acknowledge.
func DecodeStatus[T any](body []byte) (*T, error) {
	obj, err := parseObject(body)
	if err != nil {
		return nil, err
	}

	if err := statusError(obj); err != nil {
		return nil, err
	}

	status := obj.Get("status")
	if Status(status.String()) != StatusOK {
		return nil, fmt.Errorf("%w: unexpected status '%s'",
			ErrInvalidResponse, status.Raw)
	}

	var resp T
	if err := decodeStrict(body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// DecodeInvoiceResponse decodes the body returned by a pay callback. Pay
// callbacks have no OK status, so only an ERROR envelope is looked for.
func DecodeInvoiceResponse(body []byte) (*InvoiceResponse, error) {
	obj, err := parseObject(body)
	if err != nil {
		return nil, err
	}

	if err := statusError(obj); err != nil {
		return nil, err
	}

	var resp InvoiceResponse
	if err := decodeStrict(body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func parseObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: malformed json",
			ErrInvalidResponse)
	}

	obj := gjson.ParseBytes(body)
	if !obj.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: not a json object",
			ErrInvalidResponse)
	}

	return obj, nil
}

// statusError returns a *ServiceError if obj is an ERROR envelope.
func statusError(obj gjson.Result) error {
	if Status(obj.Get("status").String()) != StatusError {
		return nil
	}

	return &ServiceError{Reason: obj.Get("reason").String()}
}

// requiredFields is implemented by responses whose keys must be present in
// the body. A present key may still hold its zero value.
type requiredFields interface {
	requiredFields() []string
}

// checkPresence fails if one of keys is absent from obj or null.
func checkPresence(obj gjson.Result, keys []string) error {
	for _, key := range keys {
		field := obj.Get(key)
		if !field.Exists() || field.Type == gjson.Null {
			return fmt.Errorf("%w: missing field '%s'",
				ErrInvalidResponse, key)
		}
	}

	return nil
}

// decodeStrict unmarshals body into v and checks its required fields.
func decodeStrict(body []byte, v interface{}) error {
	if req, ok := v.(requiredFields); ok {
		err := checkPresence(gjson.ParseBytes(body), req.requiredFields())
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := validate.Struct(v); err != nil {
		// Types without validation tags, like struct{}, are fine.
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return nil
		}

		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}
