package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/alama/core"
)

var (
	pwdMismatchTag  = "pwdmatch"
	pwdMismatchText = "Passwords do not match"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the username"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdMismatchTag, pwdMismatchText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// userStructValidation does struct level validation on NewUser.
func userStructValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(NewUser)
	if !ok {
		return
	}
	if nu.PasswordConfirm != nil && *nu.PasswordConfirm != nu.Password {
		sl.ReportError(*nu.PasswordConfirm, "confirm_password", "PasswordConfirm", pwdMismatchTag, "")
		return
	}
	if passwordTooSimilar(nu.Password, nu.Username) {
		sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
	}
}

func passwordTooSimilar(pwd, uname string) bool {
	if pwd == "" || uname == "" {
		return false
	}
	ratio := difflib.NewMatcher(
		strings.Split(strings.ToLower(pwd), ""),
		strings.Split(strings.ToLower(uname), ""),
	).QuickRatio()
	return ratio >= pwdMaxSim
}
