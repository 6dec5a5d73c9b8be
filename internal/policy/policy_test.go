package policy

import (
	"testing"

	"github.com/bhasha-cms/bhasha/internal/model"
)

func admin() *model.User {
	return &model.User{ID: 1, Username: "root", Role: model.RoleAdmin, Languages: "en"}
}

func editor(langs string) *model.User {
	return &model.User{ID: 2, Username: "ed", Role: model.RoleEditor, Languages: langs}
}

func TestEffectiveLanguagesAdmin(t *testing.T) {
	got := EffectiveLanguages(admin())
	if len(got) != len(model.AllLanguages) {
		t.Fatalf("admin effective set = %v, want all %d languages", got, len(model.AllLanguages))
	}
}

func TestEffectiveLanguagesEditor(t *testing.T) {
	got := EffectiveLanguages(editor("hi,te"))
	want := []string{"hi", "te"}
	if len(got) != len(want) {
		t.Fatalf("effective set = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("effective set = %v, want %v", got, want)
		}
	}
}

func TestEffectiveLanguagesDropsUnknownCodes(t *testing.T) {
	got := EffectiveLanguages(editor("hi,xx,te"))
	if len(got) != 2 {
		t.Fatalf("effective set = %v, want unknown code dropped", got)
	}
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		lang string
		want bool
	}{
		{"admin any language", admin(), "ml", true},
		{"editor assigned", editor("hi,te"), "te", true},
		{"editor unassigned", editor("hi,te"), "ta", false},
		{"nil user", nil, "en", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanCreate(tt.user, tt.lang)
			if d.Allowed != tt.want {
				t.Fatalf("CanCreate(%v, %q) = %+v, want allowed=%v", tt.user, tt.lang, d, tt.want)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatal("deny decision must carry a reason")
			}
		})
	}
}

func TestCanEditChecksBothLanguages(t *testing.T) {
	ed := editor("hi,te")

	if d := CanEdit(ed, "hi", "te"); !d.Allowed {
		t.Fatalf("edit within assigned set denied: %s", d.Reason)
	}
	// Current language outside the set.
	if d := CanEdit(ed, "ta", "hi"); d.Allowed {
		t.Fatal("edit of a post in an unassigned language must be denied")
	}
	// Retagging into a language outside the set.
	if d := CanEdit(ed, "hi", "ta"); d.Allowed {
		t.Fatal("retagging into an unassigned language must be denied")
	}
	if d := CanEdit(admin(), "ta", "bn"); !d.Allowed {
		t.Fatalf("admin edit denied: %s", d.Reason)
	}
}

func TestCanDeleteAdminOnly(t *testing.T) {
	if d := CanDelete(admin()); !d.Allowed {
		t.Fatalf("admin delete denied: %s", d.Reason)
	}
	if d := CanDelete(editor("en,hi,te,ml,ta,kn,bn,gu,mr")); d.Allowed {
		t.Fatal("editor delete must be denied even with every language assigned")
	}
	if d := CanDelete(nil); d.Allowed {
		t.Fatal("nil user delete must be denied")
	}
}

func TestCanManageUsers(t *testing.T) {
	if d := CanManageUsers(admin()); !d.Allowed {
		t.Fatalf("admin user management denied: %s", d.Reason)
	}
	if d := CanManageUsers(editor("en")); d.Allowed {
		t.Fatal("editor user management must be denied")
	}
}
