package types //nolint:revive // types is a valid package name

import "testing"

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		input   string
		want    Template
		wantErr bool
	}{
		{"name", TemplateOriginalName, false},
		{"{number}", TemplateSequentialNumber, false},
		{"DATE", TemplateDate, false},
		{" {time} ", TemplateTime, false},
		{"random", TemplateRandomToken, false},
		{"", "", true},
		{"{seq}", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTemplate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTemplate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTemplate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenamePattern_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pattern RenamePattern
		wantErr bool
	}{
		{"original name", RenamePattern{Template: TemplateOriginalName}, false},
		{"number from 1", RenamePattern{Template: TemplateSequentialNumber, StartNumber: 1}, false},
		{"number from 0", RenamePattern{Template: TemplateSequentialNumber, StartNumber: 0}, true},
		{"date ignores start", RenamePattern{Template: TemplateDate}, false},
		{"unknown template", RenamePattern{Template: "counter"}, true},
		{"brace form is not canonical", RenamePattern{Template: "{name}"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pattern.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenamePattern_Normalized(t *testing.T) {
	p := RenamePattern{Template: TemplateSequentialNumber, StartNumber: -4}.Normalized()
	if p.StartNumber != 1 {
		t.Errorf("StartNumber = %d, want 1", p.StartNumber)
	}
	p = RenamePattern{Template: TemplateSequentialNumber, StartNumber: 7}.Normalized()
	if p.StartNumber != 7 {
		t.Errorf("StartNumber = %d, want 7", p.StartNumber)
	}
}

func TestTemplate_Description(t *testing.T) {
	for _, tmpl := range Templates {
		if tmpl.Description() == "" {
			t.Errorf("template %q has no description", tmpl)
		}
	}
}
