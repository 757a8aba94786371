package place

import "testing"

func TestCountryFocus(t *testing.T) {
	india := CountryFocus([]string{"India"}, []string{"IN", "ind"})

	tests := []struct {
		name  string
		props Properties
		want  bool
	}{
		{"admin match", Properties{"ADMIN": "India"}, true},
		{"substring match", Properties{"adm0name": "British Indian Ocean Territory"}, true},
		{"sovereign match", Properties{"admin": "Andaman", "SOVEREIGNT": "India"}, true},
		{"iso2", Properties{"iso_a2": "IN"}, true},
		{"iso3 lower", Properties{"ISO_A3": "ind"}, true},
		{"other country", Properties{"ADMIN": "Nepal", "ISO_A2": "NP"}, false},
		{"empty", Properties{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := india(tt.props); got != tt.want {
				t.Errorf("focus(%v) = %v, want %v", tt.props, got, tt.want)
			}
		})
	}
}

func TestNoFocus(t *testing.T) {
	if !NoFocus(nil) || !NoFocus(Properties{"ADMIN": "Chile"}) {
		t.Error("NoFocus should keep every feature")
	}
}
