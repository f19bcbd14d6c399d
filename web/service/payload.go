package service

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// object is a decoded JSON request body. Values stay raw so each field can be
// type-checked on its own and reported by name.
type object map[string]json.RawMessage

func decodeObject(body []byte) (object, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalidInput("invalid JSON body")
	}
	var obj object
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, invalidInput("invalid JSON body")
	}
	return obj, nil
}

// lookup returns the raw value of the first key present.
func (o object) lookup(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// trimmedString decodes raw as a JSON string and trims it. ok is false for any
// other JSON type (null included) and for strings that are blank after trim.
func trimmedString(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// strictBool decodes raw as a JSON boolean literal.
func strictBool(raw json.RawMessage) (bool, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// Credentials is the body of the registration and login requests.
type Credentials struct {
	UserName string
	Password string
}

// ParseCredentials extracts user_name and password from a JSON body. Both must
// be non-blank strings; they are returned trimmed.
func ParseCredentials(body []byte) (Credentials, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	raw, ok := obj.lookup("user_name")
	if !ok {
		return Credentials{}, invalidInput("user_name is required")
	}
	if c.UserName, ok = trimmedString(raw); !ok {
		return Credentials{}, invalidInput("user_name invalid")
	}
	raw, ok = obj.lookup("password")
	if !ok {
		return Credentials{}, invalidInput("password is required")
	}
	if c.Password, ok = trimmedString(raw); !ok {
		return Credentials{}, invalidInput("password invalid")
	}
	return c, nil
}
