package validator

import (
	"testing"
)

type recordForm struct {
	UserID   string  `validate:"required"`
	Memo     string  `validate:"required"`
	Lat      float64 `validate:"min=-90,max=90"`
	Mood     string  `validate:"omitempty,oneof=smile frown meh"`
	Time     string  `validate:"omitempty,clock"`
	Duration string  `validate:"omitempty,minsec"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
		fields  []string
	}{
		{
			name: "Valid form",
			input: recordForm{
				UserID:   "1",
				Memo:     "Best croissant in Seongsu",
				Lat:      37.5665,
				Mood:     "smile",
				Time:     "14:30",
				Duration: "30:00",
			},
			wantErr: false,
		},
		{
			name: "Optional fields empty",
			input: recordForm{
				UserID: "1",
				Memo:   "quick note",
			},
			wantErr: false,
		},
		{
			name:    "Missing required fields",
			input:   recordForm{Lat: 10},
			wantErr: true,
			fields:  []string{"UserID", "Memo"},
		},
		{
			name: "Latitude out of range",
			input: recordForm{
				UserID: "1",
				Memo:   "note",
				Lat:    123.4,
			},
			wantErr: true,
			fields:  []string{"Lat"},
		},
		{
			name: "Unknown mood",
			input: recordForm{
				UserID: "1",
				Memo:   "note",
				Mood:   "angry",
			},
			wantErr: true,
			fields:  []string{"Mood"},
		},
		{
			name: "Malformed time of day",
			input: recordForm{
				UserID: "1",
				Memo:   "note",
				Time:   "25:99",
			},
			wantErr: true,
			fields:  []string{"Time"},
		},
		{
			name: "Malformed duration",
			input: recordForm{
				UserID:   "1",
				Memo:     "note",
				Duration: "30m",
			},
			wantErr: true,
			fields:  []string{"Duration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := v.ValidateStruct(tt.input)

			if tt.wantErr && len(errors) == 0 {
				t.Error("ValidateStruct() expected errors but got none")
				return
			}

			if !tt.wantErr && len(errors) > 0 {
				t.Errorf("ValidateStruct() got unexpected errors: %v", errors)
				return
			}

			if tt.wantErr {
				foundFields := make([]string, 0)
				for _, err := range errors {
					foundFields = append(foundFields, err.Field)
				}
				for _, expectedField := range tt.fields {
					found := false
					for _, foundField := range foundFields {
						if foundField == expectedField {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("Expected validation error for field %s, but got none", expectedField)
					}
				}
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		value   interface{}
		tag     string
		wantErr bool
	}{
		{
			name:    "Valid clock",
			value:   "09:05",
			tag:     "clock",
			wantErr: false,
		},
		{
			name:    "Clock without leading zero",
			value:   "9:05",
			tag:     "clock",
			wantErr: true,
		},
		{
			name:    "Valid duration over an hour",
			value:   "125:30",
			tag:     "minsec",
			wantErr: false,
		},
		{
			name:    "Duration with bad seconds",
			value:   "30:75",
			tag:     "minsec",
			wantErr: true,
		},
		{
			name:    "Required field empty",
			value:   "",
			tag:     "required",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := v.Validate(tt.value, tt.tag)

			if tt.wantErr && len(errors) == 0 {
				t.Error("Validate() expected errors but got none")
			}

			if !tt.wantErr && len(errors) > 0 {
				t.Errorf("Validate() got unexpected errors: %v", errors)
			}
		})
	}
}

func TestNew(t *testing.T) {
	v := New()
	if v == nil || v.cli == nil {
		t.Error("New() returned invalid validator")
	}
}
