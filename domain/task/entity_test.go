package task

import (
	"reflect"
	"testing"
)

func TestParsePermissions(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    PermissionSet
		wantErr bool
	}{
		{
			name: "single permission",
			raw:  []string{"READ"},
			want: PermissionSet{PermissionRead},
		},
		{
			name: "lowercase and whitespace normalized",
			raw:  []string{" read ", "Write"},
			want: PermissionSet{PermissionRead, PermissionWrite},
		},
		{
			name: "duplicates removed",
			raw:  []string{"READ", "READ", "DELETE"},
			want: PermissionSet{PermissionRead, PermissionDelete},
		},
		{
			name:    "unknown permission rejected",
			raw:     []string{"READ", "ADMIN"},
			wantErr: true,
		},
		{
			name:    "empty list rejected",
			raw:     []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePermissions(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePermissions(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePermissions(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPermissionSet_Capabilities(t *testing.T) {
	tests := []struct {
		name        string
		set         PermissionSet
		allowModify bool
		allowDelete bool
	}{
		{
			name:        "read only grants nothing",
			set:         PermissionSet{PermissionRead},
			allowModify: false,
			allowDelete: false,
		},
		{
			name:        "write grants modify but not delete",
			set:         PermissionSet{PermissionWrite},
			allowModify: true,
			allowDelete: false,
		},
		{
			name:        "delete implies modify",
			set:         PermissionSet{PermissionDelete},
			allowModify: true,
			allowDelete: true,
		},
		{
			name:        "empty set grants nothing",
			set:         nil,
			allowModify: false,
			allowDelete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.AllowsModify(); got != tt.allowModify {
				t.Errorf("AllowsModify() = %v, want %v", got, tt.allowModify)
			}
			if got := tt.set.AllowsDelete(); got != tt.allowDelete {
				t.Errorf("AllowsDelete() = %v, want %v", got, tt.allowDelete)
			}
		})
	}
}

func TestPermissionSet_ValueScanRoundTrip(t *testing.T) {
	original := PermissionSet{PermissionRead, PermissionDelete}

	v, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "READ,DELETE" {
		t.Errorf("Value() = %q, want %q", v, "READ,DELETE")
	}

	var scanned PermissionSet
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(scanned, original) {
		t.Errorf("Scan() = %v, want %v", scanned, original)
	}

	var empty PermissionSet
	if err := empty.Scan(""); err != nil {
		t.Fatalf("Scan(\"\") error = %v", err)
	}
	if empty != nil {
		t.Errorf("Scan(\"\") = %v, want nil", empty)
	}
}
