package errors

import (
	"slices"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "A", false},
		{"valid unicode", "Hom(A,B)", false},
		{"valid with spaces", "G x H", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("object", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"single", []string{"svg"}, false},
		{"all", Formats, false},

		{"empty", nil, true},
		{"unknown", []string{"svg", "gif"}, true},
		{"duplicate", []string{"dot", "dot"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormats(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidFormat)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"svg", []string{"svg"}},
		{"xypic, SVG ,png", []string{"xypic", "svg", "png"}},
		{" , ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	if err := ValidateLimit("workers", 4, 1, 64); err != nil {
		t.Errorf("ValidateLimit() in range error = %v", err)
	}
	if err := ValidateLimit("workers", 0, 1, 64); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateLimit() below range error = %v", err)
	}
	if err := ValidateLimit("workers", 65, 1, 64); err == nil {
		t.Error("ValidateLimit() above range should fail")
	}
}
