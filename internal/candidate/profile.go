// Package candidate holds the normalized candidate record collected during a
// screening session and the rules for merging and rendering it.
package candidate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Profile is the seven-field candidate record. A field counts as satisfied
// once it holds a non-empty value; satisfied fields are never overwritten.
type Profile struct {
	FullName          string    `json:"full_name,omitempty" mapstructure:"full_name"`
	Email             string    `json:"email,omitempty" mapstructure:"email"`
	PhoneNumber       string    `json:"phone_number,omitempty" mapstructure:"phone_number"`
	YearsOfExperience float64   `json:"years_of_experience,omitempty" mapstructure:"years_of_experience"`
	DesiredPositions  []string  `json:"desired_positions,omitempty" mapstructure:"desired_positions"`
	CurrentLocation   string    `json:"current_location,omitempty" mapstructure:"current_location"`
	TechStack         TechStack `json:"tech_stack,omitzero" mapstructure:"tech_stack"`
}

// FieldCount is the number of required profile fields.
const FieldCount = 7

// Merge combines two profiles field by field. A field already satisfied in
// existing wins; otherwise the incoming value is taken when satisfied.
func Merge(existing, incoming Profile) Profile {
	out := existing

	if out.FullName == "" {
		out.FullName = incoming.FullName
	}
	if out.Email == "" {
		out.Email = incoming.Email
	}
	if out.PhoneNumber == "" {
		out.PhoneNumber = incoming.PhoneNumber
	}
	if out.YearsOfExperience == 0 {
		out.YearsOfExperience = incoming.YearsOfExperience
	}
	if len(out.DesiredPositions) == 0 {
		out.DesiredPositions = incoming.DesiredPositions
	}
	if out.CurrentLocation == "" {
		out.CurrentLocation = incoming.CurrentLocation
	}
	if out.TechStack.IsZero() {
		out.TechStack = incoming.TechStack
	}

	return out
}

// IsComplete reports whether all seven required fields are satisfied.
func (p Profile) IsComplete() bool {
	return p.SatisfiedCount() == FieldCount
}

// SatisfiedCount returns how many of the seven required fields are satisfied.
func (p Profile) SatisfiedCount() int {
	count := 0
	if p.FullName != "" {
		count++
	}
	if p.Email != "" {
		count++
	}
	if p.PhoneNumber != "" {
		count++
	}
	if p.YearsOfExperience != 0 {
		count++
	}
	if len(p.DesiredPositions) > 0 {
		count++
	}
	if p.CurrentLocation != "" {
		count++
	}
	if !p.TechStack.IsZero() {
		count++
	}
	return count
}

// Experience renders the years of experience without a trailing zero fraction.
func (p Profile) Experience() string {
	return strconv.FormatFloat(p.YearsOfExperience, 'f', -1, 64)
}

// Positions renders the desired positions as a single comma-joined string.
func (p Profile) Positions() string {
	return strings.Join(p.DesiredPositions, ", ")
}

// RenderNatural produces the human-readable multi-line rendering of the
// profile, one line per satisfied field, in the fixed field order. It never
// exposes structured syntax; every prompt that embeds profile data goes
// through it.
func (p Profile) RenderNatural() string {
	parts := make([]string, 0, FieldCount)

	if p.FullName != "" {
		parts = append(parts, "Name: "+p.FullName)
	}
	if p.Email != "" {
		parts = append(parts, "Email: "+p.Email)
	}
	if p.PhoneNumber != "" {
		parts = append(parts, "Phone: "+p.PhoneNumber)
	}
	if p.YearsOfExperience != 0 {
		parts = append(parts, fmt.Sprintf("Experience: %s years", p.Experience()))
	}
	if len(p.DesiredPositions) > 0 {
		parts = append(parts, "Desired Role(s): "+p.Positions())
	}
	if p.CurrentLocation != "" {
		parts = append(parts, "Location: "+p.CurrentLocation)
	}
	if !p.TechStack.IsZero() {
		parts = append(parts, "Tech Stack: "+p.TechStack.Flatten())
	}

	return strings.Join(parts, "\n")
}

var leadingNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// DecodeMap converts a loosely-typed object, usually decoded from model
// output, into a Profile. The decode is deliberately forgiving: numbers may
// arrive as strings ("5 years"), scalars where lists are expected, and the
// tech stack as either a flat string or a category mapping. Values that
// cannot be coerced leave the field unsatisfied instead of failing the whole
// decode.
func DecodeMap(data map[string]any) (Profile, error) {
	var profile Profile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &profile,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			techStackHook,
			lenientExperienceHook,
		),
	})
	if err != nil {
		return Profile{}, fmt.Errorf("build profile decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}

	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)
	profile.CurrentLocation = strings.TrimSpace(profile.CurrentLocation)
	profile.DesiredPositions = trimAll(profile.DesiredPositions)

	return profile, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func techStackHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(TechStack{}) {
		return data, nil
	}

	switch value := data.(type) {
	case string:
		return NewFlat(value), nil
	case map[string]any:
		return NewCategorizedFromAny(value), nil
	case nil:
		return TechStack{}, nil
	default:
		return data, nil
	}
}

// lenientExperienceHook coerces strings like "5 years" into the numeric
// experience field. Strings without a number decode to zero, leaving the
// field unsatisfied.
func lenientExperienceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}

	match := leadingNumber.FindString(data.(string))
	if match == "" {
		return float64(0), nil
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return float64(0), nil
	}

	return value, nil
}
