package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Optional is a JSON field that remembers whether it was present in the
// payload and whether it was an explicit null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Ptr returns nil for null, otherwise a pointer to a copy of the value.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// CategoryInput is the create/update payload of a Category.
type CategoryInput struct {
	CategoryName Optional[string] `json:"category_name"`
}

// TypeInput is the create/update payload of a Type.
type TypeInput struct {
	TypeName   Optional[string] `json:"type_name"`
	CategoryID Optional[uint]   `json:"category_id"`
}

// ColorInput is one entry of a product's color list.
type ColorInput struct {
	Color string `json:"color"`
}

// ProductInput is the create/update payload of a Product. On update only the
// fields present in the payload are applied.
type ProductInput struct {
	ProductName    Optional[string]       `json:"product_name"`
	TypeID         Optional[uint]         `json:"type_id"`
	ThroatStandard Optional[string]       `json:"throat_standard"`
	ThroatDiameter Optional[int]          `json:"throat_diameter"`
	PackageVolume  Optional[int]          `json:"package_volume"`
	Dimensions     Optional[string]       `json:"dimensions"`
	Compound       Optional[string]       `json:"compound"`
	Material       Optional[string]       `json:"material"`
	Package        Optional[string]       `json:"package"`
	Weight         Optional[int]          `json:"weight"`
	Application    Optional[string]       `json:"application"`
	Description    Optional[string]       `json:"description"`
	InStock        Optional[bool]         `json:"in_stock"`
	ArticleNumber  Optional[string]       `json:"article_number"`
	Colors         Optional[[]ColorInput] `json:"colors"`
}

const (
	msgRequired  = "This field is required."
	msgNotNull   = "This field may not be null."
	msgNotBlank  = "This field may not be blank."
	msgTooLong   = "Ensure this field has no more than %d characters."
	msgNegative  = "Ensure this value is greater than or equal to 0."
	msgBadColor  = "Enter a valid hex color, e.g. #FFFFFF."
	msgNoSuchRef = "Invalid pk \"%d\" - object does not exist."
)

// requiredString validates a non-null, non-blank string of at most limit runes.
func requiredString(v *ValidationError, field string, o Optional[string], creating bool, limit int) {
	switch {
	case !o.Set:
		if creating {
			v.Add(field, msgRequired)
		}
	case o.Null:
		v.Add(field, msgNotNull)
	case o.Value == "":
		v.Add(field, msgNotBlank)
	case limit > 0 && utf8.RuneCountInString(o.Value) > limit:
		v.Add(field, fmt.Sprintf(msgTooLong, limit))
	}
}

func optionalString(v *ValidationError, field string, o Optional[string], limit int) {
	if o.Set && !o.Null && limit > 0 && utf8.RuneCountInString(o.Value) > limit {
		v.Add(field, fmt.Sprintf(msgTooLong, limit))
	}
}

func nonNegative(v *ValidationError, field string, o Optional[int]) {
	if o.Set && !o.Null && o.Value < 0 {
		v.Add(field, msgNegative)
	}
}
