package model

import "testing"

func TestEnumValid(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		want  bool
	}{
		{"OrgType CONTRACTOR", OrgTypeContractor.Valid(), true},
		{"OrgType пустой", OrgType("").Valid(), false},
		{"OrgStatus PENDING", OrgStatusPending.Valid(), true},
		{"OrgStatus CLOSED", OrgStatus("CLOSED").Valid(), false},
		{"ProjectStatus PENDING", ProjectPending.Valid(), true},
		{"ProjectStatus DRAFT", ProjectStatus("DRAFT").Valid(), false},
		{"FileStatus APPROVED", FileStatusApproved.Valid(), true},
		{"FileStatus PENDING", FileStatus("PENDING").Valid(), false},
		{"TemplateType REPORTING", TemplateReporting.Valid(), true},
		{"TemplateType пустой", TemplateType("").Valid(), false},
		{"Role MEGA_ADMIN", RoleMegaAdmin.Valid(), true},
		{"Role admin", Role("admin").Valid(), false},
	}
	for _, tt := range tests {
		if tt.valid != tt.want {
			t.Errorf("%s: Valid() = %v, ожидается %v", tt.name, tt.valid, tt.want)
		}
	}
}
