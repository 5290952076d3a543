package routes

import (
	"strings"

	advisor "github.com/marycampus/advisor"
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/toast"
	"github.com/marycampus/advisor/pkg/vdom"
)

// profileKey is the session key holding the student profile.
const profileKey = "profile"

// Profile is the student's advising profile.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Program string `json:"program"`
}

// ProfilePage renders the profile setup form and the avatar uploader.
func ProfilePage(ctx server.Ctx, params map[string]string) vdom.Component {
	return vdom.Func(func() *VNode {
		profile := loadProfile(ctx)
		avatar, _ := ctx.Value(advisor.AvatarSessionKey).(string)

		return Section(Class("profile"),
			H1("Your profile"),

			Div(Class("profile-avatar"),
				IfElse(avatar != "",
					Img(Src(avatar), Alt("Your avatar"), Class("avatar")),
					Span(Class("avatar avatar-empty"), AriaHidden(true), Raw(icons.Icon("user"))),
				),
				Form(Class("avatar-form"),
					Data("upload", "true"),
					Action("/api/profile/avatar"),
					Method("post"),
					Enctype("multipart/form-data"),
					Label(For("avatar-file"), "Avatar image"),
					Input(Type("file"), ID("avatar-file"), Name("file"), Accept("image/*")),
					Button(Type("submit"), "Upload"),
				),
			),

			Form(Class("profile-form"),
				OnSubmit(func(form server.FormData) {
					saveProfile(ctx, form)
				}),
				Label(For("profile-name"), "Name"),
				Input(Type("text"), ID("profile-name"), Name("name"), Value(profile.Name), Required()),

				Label(For("profile-email"), "Email"),
				Input(Type("email"), ID("profile-email"), Name("email"), Value(profile.Email), Required()),

				Label(For("profile-program"), "Program"),
				Input(Type("text"), ID("profile-program"), Name("program"), Value(profile.Program)),

				Button(Type("submit"), "Save profile"),
			),
		)
	})
}

func loadProfile(ctx server.Ctx) Profile {
	if p, ok := ctx.Value(profileKey).(Profile); ok {
		return p
	}
	return Profile{}
}

func saveProfile(ctx server.Ctx, form server.FormData) {
	p := Profile{
		Name:    strings.TrimSpace(form.Get("name")),
		Email:   strings.TrimSpace(form.Get("email")),
		Program: strings.TrimSpace(form.Get("program")),
	}
	if p.Name == "" || p.Email == "" {
		toast.Error(ctx, "Name and email are required.")
		return
	}
	ctx.SetValue(profileKey, p)
	toast.Success(ctx, "Profile saved.")
}
