package candidate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullProfile() Profile {
	return Profile{
		FullName:          "Jane Doe",
		Email:             "jane@example.com",
		PhoneNumber:       "+1 555 0100",
		YearsOfExperience: 5,
		DesiredPositions:  []string{"Backend Engineer"},
		CurrentLocation:   "Berlin",
		TechStack:         NewFlat("Go, Postgres, Redis"),
	}
}

func TestMergeNeverUnsetsSatisfiedFields(t *testing.T) {
	existing := Profile{
		FullName:  "Jane Doe",
		Email:     "jane@example.com",
		TechStack: NewFlat("Go"),
	}
	incoming := Profile{
		FullName:          "Someone Else",
		PhoneNumber:       "+1 555 0100",
		YearsOfExperience: 3,
		TechStack:         NewFlat("Python"),
	}

	merged := Merge(existing, incoming)

	assert.Equal(t, "Jane Doe", merged.FullName)
	assert.Equal(t, "jane@example.com", merged.Email)
	assert.Equal(t, "Go", merged.TechStack.Flatten())

	// Gaps are filled from incoming.
	assert.Equal(t, "+1 555 0100", merged.PhoneNumber)
	assert.Equal(t, float64(3), merged.YearsOfExperience)
}

func TestIsComplete(t *testing.T) {
	profile := fullProfile()
	require.True(t, profile.IsComplete())

	for name, strip := range map[string]func(*Profile){
		"full_name":           func(p *Profile) { p.FullName = "" },
		"email":               func(p *Profile) { p.Email = "" },
		"phone_number":        func(p *Profile) { p.PhoneNumber = "" },
		"years_of_experience": func(p *Profile) { p.YearsOfExperience = 0 },
		"desired_positions":   func(p *Profile) { p.DesiredPositions = nil },
		"current_location":    func(p *Profile) { p.CurrentLocation = "" },
		"tech_stack":          func(p *Profile) { p.TechStack = TechStack{} },
	} {
		t.Run(name, func(t *testing.T) {
			p := fullProfile()
			strip(&p)
			assert.False(t, p.IsComplete())
		})
	}
}

func TestFlattenVariants(t *testing.T) {
	assert.Equal(t, "Go, Postgres", NewFlat("Go, Postgres").Flatten())
	assert.Equal(t, "", TechStack{}.Flatten())

	categorized := NewCategorized(map[string][]string{
		"languages": {"Go", "Python"},
		"databases": {"Postgres"},
	}, []string{"languages", "databases"})
	assert.Equal(t, "Go, Python, Postgres", categorized.Flatten())
}

func TestRenderNaturalSkipsUnsatisfiedFields(t *testing.T) {
	profile := Profile{
		FullName:  "Jane Doe",
		TechStack: NewCategorized(map[string][]string{"languages": {"Go"}}, nil),
	}

	rendered := profile.RenderNatural()

	assert.Contains(t, rendered, "Name: Jane Doe")
	assert.Contains(t, rendered, "Tech Stack: Go")
	assert.NotContains(t, rendered, "Email:")
	assert.NotContains(t, rendered, "{")
}

func TestDecodeMapIsLenient(t *testing.T) {
	profile, err := DecodeMap(map[string]any{
		"full_name":           "  Jane Doe ",
		"email":               "jane@example.com",
		"phone_number":        nil,
		"years_of_experience": "5 years",
		"desired_positions":   "Backend Engineer",
		"current_location":    "Berlin",
		"tech_stack": map[string]any{
			"languages": []any{"Go", "Python"},
			"databases": "Postgres",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.FullName)
	assert.Equal(t, float64(5), profile.YearsOfExperience)
	assert.Equal(t, []string{"Backend Engineer"}, profile.DesiredPositions)
	assert.Empty(t, profile.PhoneNumber)

	flattened := profile.TechStack.Flatten()
	assert.Contains(t, flattened, "Go")
	assert.Contains(t, flattened, "Postgres")
}

func TestDecodeMapUnparseableExperienceLeavesFieldUnsatisfied(t *testing.T) {
	profile, err := DecodeMap(map[string]any{
		"years_of_experience": "plenty",
	})
	require.NoError(t, err)
	assert.Zero(t, profile.YearsOfExperience)
}

func TestTechStackJSONRoundTrip(t *testing.T) {
	original := Profile{
		FullName: "Jane Doe",
		TechStack: NewCategorized(map[string][]string{
			"languages": {"Go"},
			"databases": {"Postgres"},
		}, []string{"languages", "databases"}),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	// The categorized shape is preserved, not flattened.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	_, isObject := raw["tech_stack"].(map[string]any)
	assert.True(t, isObject, "tech_stack should stay an object: %s", data)

	var decoded Profile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Go, Postgres", decoded.TechStack.Flatten())
}

func TestTechStackJSONFlatAndNull(t *testing.T) {
	var decoded Profile
	require.NoError(t, json.Unmarshal([]byte(`{"tech_stack": "Go, Redis"}`), &decoded))
	assert.Equal(t, "Go, Redis", decoded.TechStack.Flatten())

	var absent Profile
	require.NoError(t, json.Unmarshal([]byte(`{"tech_stack": null}`), &absent))
	assert.True(t, absent.TechStack.IsZero())
}
