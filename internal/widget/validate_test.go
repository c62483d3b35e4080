package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func i64Ptr(i int64) *int64   { return &i }

func fields(t *testing.T, req interface{}) []string {
	t.Helper()
	var out []string
	switch r := req.(type) {
	case *CreateRequest:
		for _, v := range ValidateCreate(r) {
			out = append(out, v.Field)
		}
	case *UpdateRequest:
		for _, v := range ValidateUpdate(r) {
			out = append(out, v.Field)
		}
	}
	return out
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name string
		req  *CreateRequest
		want []string
	}{
		{"valid", &CreateRequest{strPtr("Test widget"), strPtr("BASIC"), intPtr(5)}, nil},
		{"lowercase category", &CreateRequest{strPtr("Test widget"), strPtr("premium"), intPtr(5)}, nil},
		{"empty description and level 0", &CreateRequest{strPtr(""), strPtr("BASIC"), intPtr(0)},
			[]string{"description", "description", "level"}},
		{"all missing", &CreateRequest{}, []string{"description", "category", "level"}},
		{"short description", &CreateRequest{strPtr("ab"), strPtr("BASIC"), intPtr(1)}, []string{"description"}},
		{"blank description", &CreateRequest{strPtr("    "), strPtr("BASIC"), intPtr(1)}, []string{"description"}},
		{"bad category", &CreateRequest{strPtr("Test widget"), strPtr("GOLD"), intPtr(1)}, []string{"category"}},
		{"level too high", &CreateRequest{strPtr("Test widget"), strPtr("CUSTOM"), intPtr(101)}, []string{"level"}},
		{"long description", &CreateRequest{strPtr(strings.Repeat("x", 1001)), strPtr("BASIC"), intPtr(1)}, []string{"description"}},
		{"max description", &CreateRequest{strPtr(strings.Repeat("가", 1000)), strPtr("BASIC"), intPtr(100)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(t, tt.req))
		})
	}
}

func TestValidateCreateMessages(t *testing.T) {
	v := ValidateCreate(&CreateRequest{strPtr(""), strPtr("BASIC"), intPtr(0)})
	if assert.Len(t, v, 3) {
		assert.Equal(t, "Description is required", v[0].Message)
		assert.Equal(t, "Description must be between 3 and 1000 characters", v[1].Message)
		assert.Equal(t, "Level must be at least 1", v[2].Message)
		assert.Equal(t, "0", *v[2].InvalidValue)
	}

	v = ValidateCreate(&CreateRequest{strPtr("Test"), strPtr("GOLD"), intPtr(1)})
	if assert.Len(t, v, 1) {
		assert.Equal(t, "Category must be one of: BASIC, ADVANCED, PREMIUM, CUSTOM", v[0].Message)
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name string
		req  *UpdateRequest
		want []string
	}{
		{"version only", &UpdateRequest{Version: i64Ptr(0)}, nil},
		{"missing version", &UpdateRequest{Level: intPtr(3)}, []string{"version"}},
		{"bad fields", &UpdateRequest{strPtr("x"), strPtr("nope"), intPtr(0), i64Ptr(1)},
			[]string{"description", "category", "level"}},
		{"blank but long enough", &UpdateRequest{Description: strPtr("   "), Version: i64Ptr(1)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(t, tt.req))
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" advanced ")
	assert.NoError(t, err)
	assert.Equal(t, CategoryAdvanced, c)

	_, err = ParseCategory("gold")
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.True(t, ValidID(a))
	assert.NotEqual(t, a, b)
	assert.False(t, ValidID("not-a-ulid"))
	assert.False(t, ValidID(strings.ToLower(a)))
}

func TestNewPagedResponse(t *testing.T) {
	p := NewPagedResponse(nil, 5, 2, 2)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.NotNil(t, p.Content)

	p = NewPagedResponse(nil, 0, 0, 20)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
}
