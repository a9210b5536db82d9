package model

import "testing"

func TestExternalProfile_PrimaryEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile ExternalProfile
		want    string
		wantOK  bool
	}{
		{
			name: "primary designated",
			profile: ExternalProfile{
				PrimaryEmailID: "em_2",
				Emails: []EmailAddress{
					{ID: "em_1", Address: "old@example.com"},
					{ID: "em_2", Address: "primary@example.com"},
				},
			},
			want:   "primary@example.com",
			wantOK: true,
		},
		{
			name: "unknown primary falls back to first",
			profile: ExternalProfile{
				PrimaryEmailID: "em_missing",
				Emails: []EmailAddress{
					{ID: "em_1", Address: "first@example.com"},
					{ID: "em_2", Address: "second@example.com"},
				},
			},
			want:   "first@example.com",
			wantOK: true,
		},
		{
			name:    "no addresses",
			profile: ExternalProfile{PrimaryEmailID: "em_1"},
			want:    "",
			wantOK:  false,
		},
		{
			name: "no usable address",
			profile: ExternalProfile{
				PrimaryEmailID: "em_1",
				Emails: []EmailAddress{
					{ID: "em_1", Address: ""},
					{ID: "em_2", Address: "second@example.com"},
				},
			},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := tt.profile.PrimaryEmail()
			if ok != tt.wantOK {
				t.Fatalf("PrimaryEmail() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("PrimaryEmail() = %q, want %q", got, tt.want)
			}
		})
	}
}
