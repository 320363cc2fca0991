package discipline

import (
	"testing"

	"github.com/acfjba/platformdigital-sub000/core/user"
)

func TestCanRead(t *testing.T) {
	counselling := Incident{Kind: KindCounselling, ReportedBy: "reporter"}
	disciplinary := Incident{Kind: KindDisciplinary, ReportedBy: "reporter"}

	tests := []struct {
		name  string
		actor user.User
		inc   Incident
		want  bool
	}{
		{name: "disciplinary: any teacher", actor: user.User{ID: "t", Role: user.RoleTeacher}, inc: disciplinary, want: true},
		{name: "counselling: other teacher", actor: user.User{ID: "t", Role: user.RoleTeacher}, inc: counselling, want: false},
		{name: "counselling: reporter", actor: user.User{ID: "reporter", Role: user.RoleTeacher}, inc: counselling, want: true},
		{name: "counselling: head teacher", actor: user.User{ID: "h", Role: user.RoleHeadTeacher}, inc: counselling, want: true},
		{name: "counselling: primary admin", actor: user.User{ID: "p", Role: user.RolePrimaryAdmin}, inc: counselling, want: true},
		{name: "counselling: system admin", actor: user.User{ID: "s", Role: user.RoleSystemAdmin}, inc: counselling, want: true},
		{name: "counselling: librarian", actor: user.User{ID: "l", Role: user.RoleLibrarian}, inc: counselling, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRead(tt.actor, tt.inc); got != tt.want {
				t.Errorf("CanRead() = %v, want %v", got, tt.want)
			}
		})
	}
}
