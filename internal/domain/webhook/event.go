// Package webhook defines the canonical change notification decoded from the
// provider's webhook events, with a single validating constructor: raw event
// maps never travel past the decode boundary.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Action is the change action announced by a webhook event
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// ObjectType is the kind of object a change applies to
type ObjectType string

const (
	ObjectTypeProduct ObjectType = "Product"
	ObjectTypeOrder   ObjectType = "Order"
)

// Raw event field names and the fixed object-type code table
const (
	fieldMode    = "Mode"
	fieldType    = "Type"
	fieldUser    = "User"
	fieldComment = "Comment"

	typeCodeProduct = "STK"
	typeCodeOrder   = "CMD"
)

// DefaultUser is recorded when the event does not name a user
const DefaultUser = "Optilog API"

// objectTypes maps the raw 3-letter type codes to canonical object types
var objectTypes = map[string]ObjectType{
	typeCodeProduct: ObjectTypeProduct,
	typeCodeOrder:   ObjectTypeOrder,
}

// idFields selects, per type code, which raw field carries the object id
var idFields = map[string]string{
	typeCodeProduct: "ID",
	typeCodeOrder:   "DestID",
}

// Decode failure reasons. An invalid event is skipped by the caller; it
// never aborts the batch.
var (
	ErrUnknownAction     = errors.New("webhook: unknown or missing action")
	ErrUnknownObjectType = errors.New("webhook: unknown or missing object type")
	ErrMissingObjectID   = errors.New("webhook: missing object id")
)

// ChangeRecord is a validated change notification. All of Action,
// ObjectType and ObjectID are guaranteed non-empty.
type ChangeRecord struct {
	Action     Action
	ObjectType ObjectType
	ObjectID   string
	User       string
	Comment    string
}

// Key returns a stable deduplication key for the change
func (c *ChangeRecord) Key() string {
	return string(c.ObjectType) + ":" + c.ObjectID + ":" + string(c.Action)
}

// Decode validates and normalizes a single raw webhook event. Every check
// must pass or the whole event is rejected with a reason the caller can log.
func Decode(raw map[string]any) (*ChangeRecord, error) {
	action, ok := decodeAction(raw[fieldMode])
	if !ok {
		return nil, ErrUnknownAction
	}

	typeCode, ok := scalarString(raw[fieldType])
	if !ok {
		return nil, ErrUnknownObjectType
	}
	objectType, ok := objectTypes[typeCode]
	if !ok {
		return nil, ErrUnknownObjectType
	}

	objectID, ok := scalarString(raw[idFields[typeCode]])
	if !ok || objectID == "" {
		return nil, ErrMissingObjectID
	}

	user, ok := scalarString(raw[fieldUser])
	if !ok || user == "" {
		user = DefaultUser
	}

	comment, ok := scalarString(raw[fieldComment])
	if !ok || comment == "" {
		comment = dump(raw)
	}

	return &ChangeRecord{
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		User:       user,
		Comment:    comment,
	}, nil
}

// decodeAction accepts only an exact scalar match of a known action token
func decodeAction(v any) (Action, bool) {
	s, ok := scalarString(v)
	if !ok {
		return "", false
	}
	switch Action(s) {
	case ActionCreate, ActionUpdate, ActionDelete:
		return Action(s), true
	default:
		return "", false
	}
}

// scalarString converts a decoded JSON scalar to its string form. Objects,
// arrays, booleans and nulls are not scalars for our purposes.
func scalarString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case json.Number:
		return value.String(), true
	default:
		return "", false
	}
}

// dump renders the raw event for diagnostic comments
func dump(raw map[string]any) string {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	return string(data)
}
